// Package config provides the configuration types and loader shared
// across every service built on this runtime.
package config

import (
	"fmt"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the common base every service-specific configuration
// struct embeds, so a single LoadConfigWithDefaults call can populate
// both the shared and the service-specific fields in one pass.
type Config struct{}

// LoadConfigWithDefaults loads "<name>.yml" from the usual search
// locations (the working directory, $HOME/.config/actorkit, and
// /etc/actorkit/<name>), seeds it with defaults, overlays
// <NAME>_* environment variables and a --config flag override, and
// decodes the merged result into out, a pointer to the caller's
// config struct.
func LoadConfigWithDefaults(name string, out interface{}, defaults map[string]interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yml")

	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(fmt.Sprintf("%s/.config/actorkit", home))
	}
	v.AddConfigPath(fmt.Sprintf("/etc/actorkit/%s", name))
	v.AddConfigPath(".")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	prefix := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if pflag.Lookup("config") == nil {
		pflag.String("config", "", "path to configuration file")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}
	if cfgFile, err := pflag.CommandLine.GetString("config"); err == nil && cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return v.Unmarshal(out)
}
