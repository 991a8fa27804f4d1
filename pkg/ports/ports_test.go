package ports

import "testing"

func TestScanSet(t *testing.T) {
	want := []int{80, 443, 21, 22, 25, 3306, 8080, 8443}
	if len(ScanSet) != len(want) {
		t.Fatalf("ScanSet has %d ports, want %d", len(ScanSet), len(want))
	}
	for i, p := range want {
		if ScanSet[i] != p {
			t.Errorf("ScanSet[%d] = %d, want %d", i, ScanSet[i], p)
		}
	}
}

func TestIsHTTPFamily(t *testing.T) {
	for _, p := range []int{80, 443, 8080, 8443} {
		if !IsHTTPFamily(p) {
			t.Errorf("IsHTTPFamily(%d) = false, want true", p)
		}
	}
	for _, p := range []int{21, 22, 25, 3306, 8081} {
		if IsHTTPFamily(p) {
			t.Errorf("IsHTTPFamily(%d) = true, want false", p)
		}
	}
}

func TestIsCrawlSeed(t *testing.T) {
	for _, p := range []int{80, 443} {
		if !IsCrawlSeed(p) {
			t.Errorf("IsCrawlSeed(%d) = false, want true", p)
		}
	}
	// Alternate web ports are recorded but never seed a crawl.
	for _, p := range []int{8080, 8443, 22} {
		if IsCrawlSeed(p) {
			t.Errorf("IsCrawlSeed(%d) = true, want false", p)
		}
	}
}

func TestSchemeFor(t *testing.T) {
	tests := []struct {
		port int
		want string
	}{
		{80, "http"},
		{8080, "http"},
		{443, "https"},
		{8443, "https"},
	}
	for _, tt := range tests {
		if got := SchemeFor(tt.port); got != tt.want {
			t.Errorf("SchemeFor(%d) = %q, want %q", tt.port, got, tt.want)
		}
	}
}
