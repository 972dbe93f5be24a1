package mqtt

import (
	"testing"

	"github.com/modulo-iot/modulocore/internal/infrastructure/config"
)

// testMQTTConfig returns a config suitable for option-building tests.
// No broker is contacted.
func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "localhost",
			Port:     1883,
			ClientID: "test-core",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}
}

func TestBuildClientOptions_BrokerURL(t *testing.T) {
	tests := []struct {
		name string
		tls  bool
		want string
	}{
		{name: "plain tcp", tls: false, want: "tcp://localhost:1883"},
		{name: "tls", tls: true, want: "ssl://localhost:1883"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testMQTTConfig()
			cfg.Broker.TLS = tt.tls

			opts := buildClientOptions(cfg)
			if len(opts.Servers) != 1 {
				t.Fatalf("expected 1 broker, got %d", len(opts.Servers))
			}
			if got := opts.Servers[0].String(); got != tt.want {
				t.Errorf("broker URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildClientOptions_Auth(t *testing.T) {
	cfg := testMQTTConfig()
	cfg.Auth.Username = "core"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)
	if opts.Username != "core" {
		t.Errorf("Username = %q, want %q", opts.Username, "core")
	}
	if opts.Password != "secret" {
		t.Errorf("Password not applied")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testMQTTConfig())
	configureLWT(opts, opts.ClientID)

	if !opts.WillEnabled {
		t.Fatal("LWT not enabled")
	}
	if opts.WillTopic != "modulocore/system/status" {
		t.Errorf("WillTopic = %q, want %q", opts.WillTopic, "modulocore/system/status")
	}
	if !opts.WillRetained {
		t.Error("LWT should be retained so late subscribers see the crash status")
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("t", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("bad qos error = %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Subscribe("", 1, func(string, []byte) error { return nil }); err != ErrInvalidTopic {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("t", 3, func(string, []byte) error { return nil }); err != ErrInvalidQoS {
		t.Errorf("bad qos error = %v, want ErrInvalidQoS", err)
	}
}
