package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nihei9/charscope/dispatcher"
	"github.com/nihei9/charscope/engine"
	"github.com/nihei9/charscope/server"
	"github.com/nihei9/charscope/ucd"
)

const envPrefix = "CHARSCOPE"

const (
	keyConfig      = "config"
	keyListen      = "listen"
	keyProtocol    = "protocol"
	keyUnicodeData = "unicode-data"
	keyEngines     = "engines"
	keyParallel    = "parallel"
	keyMaxPayload  = "max-payload"
	keyMetrics     = "metrics"
)

const (
	protocolFastCGI = "fcgi"
	protocolHTTP    = "http"
)

type config struct {
	Listen      string
	Protocol    string
	UnicodeData string
	Engines     []string
	Parallel    bool
	MaxPayload  int64
	Metrics     bool
}

// loadConfig resolves the settings of a command. A flag set on the command line wins over the environment
// (CHARSCOPE_LISTEN and so on), which wins over the config file, which wins over flag defaults.
func loadConfig(flags *pflag.FlagSet) (*config, error) {
	v := viper.New()
	v.SetDefault(keyListen, server.DefaultAddress)
	v.SetDefault(keyProtocol, protocolFastCGI)
	v.SetDefault(keyUnicodeData, "UnicodeData.txt")
	v.SetDefault(keyEngines, engine.DefaultNames)
	v.SetDefault(keyMaxPayload, server.DefaultMaxPayload)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.BindPFlags(flags)
	if err != nil {
		return nil, err
	}

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("cannot read the config file %v: %w", path, err)
		}
	}

	c := &config{
		Listen:      v.GetString(keyListen),
		Protocol:    strings.ToLower(v.GetString(keyProtocol)),
		UnicodeData: v.GetString(keyUnicodeData),
		Engines:     stringList(v, keyEngines),
		Parallel:    v.GetBool(keyParallel),
		MaxPayload:  v.GetInt64(keyMaxPayload),
		Metrics:     v.GetBool(keyMetrics),
	}
	err = c.validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// stringList reads a list that may also be given as a comma-separated string. Engine names contain
// spaces, so a list in the environment cannot be split on white space.
func stringList(v *viper.Viper, key string) []string {
	var items []string
	switch val := v.Get(key).(type) {
	case string:
		items = strings.Split(val, ",")
	default:
		items = v.GetStringSlice(key)
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		list = append(list, item)
	}
	return list
}

func (c *config) validate() error {
	switch c.Protocol {
	case protocolFastCGI, protocolHTTP:
	default:
		return fmt.Errorf("unknown protocol: %q (known protocols: %v, %v)", c.Protocol, protocolFastCGI, protocolHTTP)
	}
	if c.Listen == "" {
		return fmt.Errorf("a listen address is required")
	}
	if c.UnicodeData == "" {
		return fmt.Errorf("a UnicodeData.txt file path is required")
	}
	if len(c.Engines) == 0 {
		return fmt.Errorf("at least one engine is required")
	}
	for _, name := range c.Engines {
		_, err := engine.New(name, nil)
		if err != nil {
			return err
		}
	}
	if c.MaxPayload <= 0 {
		return fmt.Errorf("max payload must be positive: %v", c.MaxPayload)
	}
	return nil
}

// newDispatcher loads the database and builds the configured engines.
func (c *config) newDispatcher() (*dispatcher.Dispatcher, error) {
	db, err := ucd.LoadFile(c.UnicodeData)
	if err != nil {
		return nil, err
	}
	es, err := engine.NewAll(c.Engines, db)
	if err != nil {
		return nil, err
	}
	var opts []dispatcher.DispatcherOption
	if c.Parallel {
		opts = append(opts, dispatcher.Parallel())
	}
	return dispatcher.New(es, opts...)
}
