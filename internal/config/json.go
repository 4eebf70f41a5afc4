package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors StructuredConfig with JSON tags and
// string-friendly durations ("30s", "1h") for file-based configuration.
type StructuredJSONConfig struct {
	Engine struct {
		DefaultMaxRetries    int      `json:"default_max_retries"`
		DefaultBatchSize     int      `json:"default_batch_size"`
		EventBufferSize      int      `json:"event_buffer_size"`
		SubscriberBufferSize int      `json:"subscriber_buffer_size"`
		PackageTTL           Duration `json:"package_ttl"`
		SessionHistorySize   int      `json:"session_history_size"`
	} `json:"engine,omitempty"`

	Storage struct {
		BoltPath string `json:"bolt_path"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address"`
		RequestTimeout  Duration `json:"request_timeout"`
		ShutdownTimeout Duration `json:"shutdown_timeout"`
	} `json:"server,omitempty"`

	Remote struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Engine: Engine{
			DefaultMaxRetries:    jsonCfg.Engine.DefaultMaxRetries,
			DefaultBatchSize:     jsonCfg.Engine.DefaultBatchSize,
			EventBufferSize:      jsonCfg.Engine.EventBufferSize,
			SubscriberBufferSize: jsonCfg.Engine.SubscriberBufferSize,
			PackageTTL:           time.Duration(jsonCfg.Engine.PackageTTL),
			SessionHistorySize:   jsonCfg.Engine.SessionHistorySize,
		},
		Storage: Storage{
			BoltPath: jsonCfg.Storage.BoltPath,
		},
		Server: Server{
			HTTPAddress:     jsonCfg.Server.HTTPAddress,
			RequestTimeout:  time.Duration(jsonCfg.Server.RequestTimeout),
			ShutdownTimeout: time.Duration(jsonCfg.Server.ShutdownTimeout),
		},
		Remote: Remote{
			HTTPAddress:    jsonCfg.Remote.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Workers: Workers{
			SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
