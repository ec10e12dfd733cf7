package security

import (
	"testing"
	"time"
)

func TestSSRFGuard_ValidateURL(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name    string
		rawURL  string
		wantErr bool
	}{
		{
			name:    "正常なHTTPS URL",
			rawURL:  "https://www.oca.org/readings",
			wantErr: false,
		},
		{
			name:    "正常なHTTP URL",
			rawURL:  "http://example.com/page",
			wantErr: false,
		},
		{
			name:    "空のURL",
			rawURL:  "",
			wantErr: true,
		},
		{
			name:    "不正なスキーム",
			rawURL:  "ftp://example.com/readings",
			wantErr: true,
		},
		{
			name:    "file スキーム",
			rawURL:  "file:///etc/passwd",
			wantErr: true,
		},
		{
			name:    "ホストなし",
			rawURL:  "https://",
			wantErr: true,
		},
		{
			name:    "localhost",
			rawURL:  "http://localhost:8080/readings",
			wantErr: true,
		},
		{
			name:    "ループバックIP",
			rawURL:  "http://127.0.0.1/readings",
			wantErr: true,
		},
		{
			name:    "プライベートIP 10.x",
			rawURL:  "http://10.0.0.5/readings",
			wantErr: true,
		},
		{
			name:    "プライベートIP 192.168.x",
			rawURL:  "http://192.168.1.1/readings",
			wantErr: true,
		},
		{
			name:    "メタデータIP",
			rawURL:  "http://169.254.169.254/latest/meta-data/",
			wantErr: true,
		},
		{
			name:    "IPv6ループバック",
			rawURL:  "http://[::1]/readings",
			wantErr: true,
		},
		{
			name:    "パブリックIP",
			rawURL:  "http://93.184.216.34/readings",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.rawURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.rawURL, err, tt.wantErr)
			}
		})
	}
}

func TestSSRFGuard_NewSafeClient(t *testing.T) {
	guard := NewSSRFGuard()

	client := guard.NewSafeClient(10*time.Second, 5*1024*1024)
	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
	if client.Timeout != 10*time.Second {
		t.Errorf("client.Timeout = %v, want %v", client.Timeout, 10*time.Second)
	}
}

func TestSSRFGuard_NewSafeClient_BlocksLoopback(t *testing.T) {
	guard := NewSSRFGuard()
	client := guard.NewSafeClient(2*time.Second, 1024)

	// ループバックへのリクエストはDialerレベルでブロックされる
	resp, err := client.Get("http://127.0.0.1:1/")
	if err == nil {
		resp.Body.Close()
		t.Error("expected loopback request to be blocked")
	}
}
