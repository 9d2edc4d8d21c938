package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with non-empty values from the JSON file named
// by -c/-config or CONFIG. Read or unmarshal errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
	if path == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
