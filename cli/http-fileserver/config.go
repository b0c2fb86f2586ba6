package main

import (
	"encoding/json"
	"net/netip"
	"os"

	"github.com/sagernet/sing-devserver/extensions/fileserver"
	"github.com/sagernet/sing-devserver/extensions/log"
	E "github.com/sagernet/sing/common/exceptions"
)

type Flags struct {
	Listen     string `json:"listen"`
	Port       uint16 `json:"port"`
	Directory  string `json:"directory"`
	NoListing  bool   `json:"no_listing"`
	LogLevel   string `json:"log_level"`
	ConfigFile string `json:"-"`
}

// mergeConfigFile fills flags left unset on the command line from the
// configuration file.
func mergeConfigFile(f *Flags) error {
	if f.ConfigFile == "" {
		return nil
	}
	if _, err := os.Stat(f.ConfigFile); os.IsNotExist(err) {
		return E.New("config file not found: ", f.ConfigFile)
	}
	configFile, err := os.ReadFile(f.ConfigFile)
	if err != nil {
		return E.Cause(err, "read config file")
	}
	flagsNew := new(Flags)
	err = json.Unmarshal(configFile, flagsNew)
	if err != nil {
		return E.Cause(err, "decode config file")
	}
	if flagsNew.Listen != "" && f.Listen == "" {
		f.Listen = flagsNew.Listen
	}
	if flagsNew.Port != 0 && f.Port == 0 {
		f.Port = flagsNew.Port
	}
	if flagsNew.Directory != "" && f.Directory == "" {
		f.Directory = flagsNew.Directory
	}
	if flagsNew.LogLevel != "" && f.LogLevel == "" {
		f.LogLevel = flagsNew.LogLevel
	}
	if flagsNew.NoListing {
		f.NoListing = true
	}
	return nil
}

func serverOptions(f *Flags) ([]fileserver.Option, error) {
	err := mergeConfigFile(f)
	if err != nil {
		return nil, err
	}

	if f.LogLevel != "" {
		err = log.SetLevel(f.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	// The zero address listens on every interface.
	var bindAddr netip.Addr
	if f.Listen != "" {
		addr, err := netip.ParseAddr(f.Listen)
		if err != nil {
			return nil, E.Cause(err, "bad listen address")
		}
		bindAddr = addr
	}
	if f.Port == 0 {
		f.Port = fileserver.DefaultPort
	}

	return []fileserver.Option{
		fileserver.WithListen(netip.AddrPortFrom(bindAddr, f.Port)),
		fileserver.WithRoot(f.Directory),
		fileserver.WithListing(!f.NoListing),
	}, nil
}

func newServer(f *Flags) (*fileserver.Server, error) {
	options, err := serverOptions(f)
	if err != nil {
		return nil, err
	}
	return fileserver.NewServer(options...)
}
