package ingest

import (
	"errors"
	"testing"

	"github.com/modulo-iot/modulocore/internal/modulo"
)

func TestDecodeMeasurement(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
		check   func(t *testing.T, msg *MeasurementMessage)
	}{
		{
			name:    "both values",
			payload: `{"moduleId": 7, "temperature": 21.5, "pressure": 1013.2}`,
			check: func(t *testing.T, msg *MeasurementMessage) {
				if msg.ModuleID != 7 {
					t.Errorf("ModuleID = %d, want 7", msg.ModuleID)
				}
				if msg.Temperature == nil || *msg.Temperature != 21.5 {
					t.Errorf("Temperature = %v, want 21.5", msg.Temperature)
				}
				if msg.Pressure == nil || *msg.Pressure != 1013.2 {
					t.Errorf("Pressure = %v, want 1013.2", msg.Pressure)
				}
			},
		},
		{
			name:    "temperature only",
			payload: `{"moduleId": 7, "temperature": 21.5}`,
			check: func(t *testing.T, msg *MeasurementMessage) {
				if msg.Pressure != nil {
					t.Errorf("Pressure = %v, want nil", msg.Pressure)
				}
			},
		},
		{
			name:    "legacy spanish keys",
			payload: `{"moduloId": 7, "temperatura": 19.0, "presion": 990.5}`,
			check: func(t *testing.T, msg *MeasurementMessage) {
				if msg.ModuleID != 7 {
					t.Errorf("ModuleID = %d, want 7", msg.ModuleID)
				}
				if msg.Temperature == nil || *msg.Temperature != 19.0 {
					t.Errorf("Temperature = %v, want 19.0", msg.Temperature)
				}
				if msg.Pressure == nil || *msg.Pressure != 990.5 {
					t.Errorf("Pressure = %v, want 990.5", msg.Pressure)
				}
			},
		},
		{name: "malformed json", payload: `{not json`, wantErr: ErrDecode},
		{name: "missing module id", payload: `{"temperature": 21.5}`, wantErr: ErrValidation},
		{name: "no values at all", payload: `{"moduleId": 7}`, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMeasurement([]byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeMeasurement() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeMeasurement() error = %v", err)
			}
			tt.check(t, msg)
		})
	}
}

func TestDecodeBeamUpdate(t *testing.T) {
	t.Run("simple form", func(t *testing.T) {
		msg, err := DecodeBeamUpdate([]byte(`{"moduleId": 7, "up": 2.0, "down": 1.5}`))
		if err != nil {
			t.Fatalf("DecodeBeamUpdate() error = %v", err)
		}
		if msg.ModuleID != 7 || msg.Up != 2.0 || msg.Down != 1.5 {
			t.Errorf("msg = %+v, want moduleId 7 up 2.0 down 1.5", msg)
		}
		if msg.UpStatus != nil {
			t.Errorf("UpStatus = %v, want nil in simple form", msg.UpStatus)
		}
	})

	t.Run("extended form", func(t *testing.T) {
		payload := `{
			"moduleId": 7, "up": 2.0, "down": 1.5,
			"upExpected": 2.0, "upActual": 2.0, "estadoUp": "ok",
			"downExpected": 1.5, "downActual": 1.0, "estadoDown": "mismatch"
		}`
		msg, err := DecodeBeamUpdate([]byte(payload))
		if err != nil {
			t.Fatalf("DecodeBeamUpdate() error = %v", err)
		}
		if msg.DownStatus == nil || *msg.DownStatus != "mismatch" {
			t.Errorf("DownStatus = %v, want mismatch", msg.DownStatus)
		}
		if msg.DownActual == nil || *msg.DownActual != 1.0 {
			t.Errorf("DownActual = %v, want 1.0", msg.DownActual)
		}
	})

	t.Run("errors", func(t *testing.T) {
		cases := []struct {
			payload string
			wantErr error
		}{
			{`not json at all`, ErrDecode},
			{`{"up": 2.0, "down": 1.5}`, ErrValidation},
			{`{"moduleId": 7, "up": 2.0}`, ErrValidation},
			{`{"moduleId": 7, "up": 4.0, "down": 1.5}`, ErrValidation},
			{`{"moduleId": 7, "up": 1.3, "down": 1.5}`, ErrValidation},
		}
		for _, c := range cases {
			if _, err := DecodeBeamUpdate([]byte(c.payload)); !errors.Is(err, c.wantErr) {
				t.Errorf("DecodeBeamUpdate(%s) error = %v, want %v", c.payload, err, c.wantErr)
			}
		}
	})
}

func TestDecodeConnectionEvent(t *testing.T) {
	t.Run("english keys", func(t *testing.T) {
		msg, err := DecodeConnectionEvent([]byte(`{"moduleId": 7, "event": "OFFLINE", "details": "power loss", "disconnectSeconds": 42}`))
		if err != nil {
			t.Fatalf("DecodeConnectionEvent() error = %v", err)
		}
		if msg.Event != modulo.EventOffline {
			t.Errorf("Event = %v, want OFFLINE", msg.Event)
		}
		if msg.Detail != "power loss" {
			t.Errorf("Detail = %q, want power loss", msg.Detail)
		}
		if msg.DisconnectSeconds == nil || *msg.DisconnectSeconds != 42 {
			t.Errorf("DisconnectSeconds = %v, want 42", msg.DisconnectSeconds)
		}
	})

	t.Run("legacy spanish keys and lowercase event", func(t *testing.T) {
		msg, err := DecodeConnectionEvent([]byte(`{"moduloId": 7, "evento": "reconexion", "detalles": "router reboot"}`))
		if err != nil {
			t.Fatalf("DecodeConnectionEvent() error = %v", err)
		}
		if msg.Event != modulo.EventReconnect {
			t.Errorf("Event = %v, want RECONEXION", msg.Event)
		}
		if msg.Detail != "router reboot" {
			t.Errorf("Detail = %q, want router reboot", msg.Detail)
		}
	})

	t.Run("errors", func(t *testing.T) {
		cases := []struct {
			payload string
			wantErr error
		}{
			{`[1,2`, ErrDecode},
			{`{"event": "ONLINE"}`, ErrValidation},
			{`{"moduleId": 7}`, ErrValidation},
			{`{"moduleId": 7, "event": "BOOTED"}`, ErrValidation},
		}
		for _, c := range cases {
			if _, err := DecodeConnectionEvent([]byte(c.payload)); !errors.Is(err, c.wantErr) {
				t.Errorf("DecodeConnectionEvent(%s) error = %v, want %v", c.payload, err, c.wantErr)
			}
		}
	})
}

func TestDecodeTechInfo(t *testing.T) {
	payload := `{
		"moduleId": 7,
		"firmware": "2.1.0",
		"ip": "10.0.0.7",
		"mac": "aa:bb:cc:dd:ee:ff",
		"uptime": 3600,
		"memoria": 48000,
		"temperatura": 41.5,
		"voltaje": 5.1,
		"signal": -61
	}`

	msg, err := DecodeTechInfo([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeTechInfo() error = %v", err)
	}
	if msg.ModuleID != 7 {
		t.Errorf("ModuleID = %d, want 7", msg.ModuleID)
	}
	u := msg.Update
	if u.Firmware == nil || *u.Firmware != "2.1.0" {
		t.Errorf("Firmware = %v, want 2.1.0", u.Firmware)
	}
	if u.FreeMemory == nil || *u.FreeMemory != 48000 {
		t.Errorf("FreeMemory = %v, want 48000", u.FreeMemory)
	}
	if u.InternalTemp == nil || *u.InternalTemp != 41.5 {
		t.Errorf("InternalTemp = %v, want 41.5", u.InternalTemp)
	}
	if u.SupplyVoltage == nil || *u.SupplyVoltage != 5.1 {
		t.Errorf("SupplyVoltage = %v, want 5.1", u.SupplyVoltage)
	}

	t.Run("partial payload keeps absent fields nil", func(t *testing.T) {
		msg, err := DecodeTechInfo([]byte(`{"moduleId": 7, "uptime": 60}`))
		if err != nil {
			t.Fatalf("DecodeTechInfo() error = %v", err)
		}
		if msg.Update.Firmware != nil || msg.Update.SignalStrength != nil {
			t.Errorf("Update = %+v, want only uptime set", msg.Update)
		}
		if msg.Update.UptimeSeconds == nil || *msg.Update.UptimeSeconds != 60 {
			t.Errorf("UptimeSeconds = %v, want 60", msg.Update.UptimeSeconds)
		}
	})

	t.Run("missing module id", func(t *testing.T) {
		if _, err := DecodeTechInfo([]byte(`{"uptime": 60}`)); !errors.Is(err, ErrValidation) {
			t.Errorf("DecodeTechInfo() error = %v, want ErrValidation", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := DecodeTechInfo([]byte(`<xml/>`)); !errors.Is(err, ErrDecode) {
			t.Errorf("DecodeTechInfo() error = %v, want ErrDecode", err)
		}
	})
}
