package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mgillis/stunt/server"
)

// Config keys. Any of them may also come from the STUNT_ environment.
const (
	cfgKeyCheckpointInterval  = "checkpoint_interval"
	cfgKeyUnforkedCheckpoints = "unforked_checkpoints"
	cfgKeyExecBinRoot         = "exec_bin_root"
	cfgKeyCommandHistorySize  = "command_history_size"
)

// loadConfig reads the optional yaml config file. A missing default
// config file is not an error; defaults apply.
func loadConfig(configFile string) (server.Config, error) {
	defaults := server.DefaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyCheckpointInterval, defaults.CheckpointInterval)
	v.SetDefault(cfgKeyUnforkedCheckpoints, defaults.UnforkedCheckpoints)
	v.SetDefault(cfgKeyExecBinRoot, defaults.ExecBinRoot)
	v.SetDefault(cfgKeyCommandHistorySize, defaults.CommandHistorySize)
	v.SetEnvPrefix("STUNT")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("stunt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return defaults, fmt.Errorf("read config: %w", err)
		}
	}

	return server.Config{
		CheckpointInterval:  v.GetDuration(cfgKeyCheckpointInterval),
		UnforkedCheckpoints: v.GetBool(cfgKeyUnforkedCheckpoints),
		ExecBinRoot:         v.GetString(cfgKeyExecBinRoot),
		CommandHistorySize:  v.GetInt(cfgKeyCommandHistorySize),
	}, nil
}
