package core

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	orig, ok := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() {
		if ok {
			_ = os.Setenv(key, orig)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func TestNewConfig(t *testing.T) {
	setEnv(t, "ENV", "test")
	setEnv(t, "TEST_RESETDELAY", "5s")
	setEnv(t, "TEST_BACKENDBASEURL", "https://feedback.example.edu/api/")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, 5*time.Second, conf.Evaluation.ResetDelay)
	assert.Equal(t, "https://feedback.example.edu/api", conf.Backend.BaseURL)
	assert.Equal(t, ":8000", conf.Server.Address)
	assert.Equal(t, 2*time.Hour, conf.Server.SessionTTL)
}

func TestConfig_Validate(t *testing.T) {
	validate := NewValidator(NewTranslator())

	newConf := func() *Config {
		conf := &Config{}
		conf.Backend.BaseURL = "http://localhost:8080/api"
		conf.Server.Address = ":8000"
		conf.Server.SessionTTL = time.Hour
		return conf
	}

	tests := []struct {
		name    string
		modify  func(conf *Config)
		wantErr bool
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "backend url not a url", modify: func(conf *Config) { conf.Backend.BaseURL = "feedback" }, wantErr: true},
		{name: "no backend url", modify: func(conf *Config) { conf.Backend.BaseURL = "" }, wantErr: true},
		{name: "negative reset delay", modify: func(conf *Config) { conf.Evaluation.ResetDelay = -time.Second }, wantErr: true},
		{name: "no session ttl", modify: func(conf *Config) { conf.Server.SessionTTL = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := newConf()
			tt.modify(conf)
			if err := conf.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
