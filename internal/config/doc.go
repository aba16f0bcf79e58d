// Package config manages user-level settings stored at ~/.esp8266-setup/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the default library author, extra catalog directories and the conversion runtime.
package config
