package services

import "testing"

func TestParsePackageURL(t *testing.T) {
	tests := []struct {
		purl        string
		wantName    string
		wantVersion string
		wantErr     bool
	}{
		{"pkg:nuget/Newtonsoft.Json@13.0.3", "Newtonsoft.Json", "13.0.3", false},
		{"pkg:npm/%40angular/core@16.0.0", "core", "16.0.0", false},
		{"pkg:nuget/NoVersion", "", "", true},
		{"not-a-purl", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.purl, func(t *testing.T) {
			name, version, err := ParsePackageURL(tt.purl)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePackageURL(%q) error = %v, wantErr %v", tt.purl, err, tt.wantErr)
			}
			if name != tt.wantName || version != tt.wantVersion {
				t.Errorf("ParsePackageURL(%q) = %s, %s; want %s, %s", tt.purl, name, version, tt.wantName, tt.wantVersion)
			}
		})
	}
}
