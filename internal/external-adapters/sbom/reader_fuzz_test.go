package sbom

import (
	"testing"
)

// FuzzReaderParse feeds random and malformed documents to the SBOM reader
// to detect crashes or panics.
//
// Run with: go test -fuzz=FuzzReaderParse -fuzztime=30s
func FuzzReaderParse(f *testing.F) {
	f.Add([]byte(cycloneDXDoc))
	f.Add([]byte(spdxDoc))

	f.Add([]byte(``))
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`{"bomFormat": "CycloneDX", "components": null}`))
	f.Add([]byte(`{"bomFormat": "CycloneDX", "components": [{"name": "a", "components": [{"name": "b"}]}]}`))
	f.Add([]byte(`{"bomFormat": "CycloneDX", "components": [{"name": "a", "licenses": [{"license": null}]}]}`))
	f.Add([]byte(`{"spdxVersion": "SPDX-2.3", "packages": [{"name": "a", "externalRefs": null}]}`))
	f.Add([]byte(`"SPDX"`))

	reader := NewReader(nil)

	f.Fuzz(func(t *testing.T, data []byte) {
		components, err := reader.Parse(data)
		if err != nil {
			return
		}
		for _, c := range components {
			if c.Name == "" {
				t.Errorf("component without a name: %+v", c)
			}
			if c.Version == "" {
				t.Errorf("component without a version: %+v", c)
			}
		}
	})
}
