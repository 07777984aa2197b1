package credential

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testRouter(t *testing.T) *Router {
	t.Helper()
	routes, err := ParseRoutes("ind=IND;br=BR,US,SAC,NA")
	if err != nil {
		t.Fatalf("ParseRoutes() error = %v", err)
	}
	router, err := NewRouter(routes, "bd", []string{"IND", "BD", "BR", "US", "SAC", "NA"})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return router
}

// TestRouter_Pool tests group to pool routing with the default fallback
func TestRouter_Pool(t *testing.T) {
	router := testRouter(t)

	tests := []struct {
		group string
		want  string
	}{
		{"IND", "ind"},
		{"ind", "ind"},
		{"US", "br"},
		{" sac ", "br"},
		{"BD", "bd"},
		{"EU", "bd"},
	}
	for _, tt := range tests {
		if got := router.Pool(tt.group); got != tt.want {
			t.Errorf("Pool(%q) = %q, want %q", tt.group, got, tt.want)
		}
	}

	want := []string{"IND", "BD", "BR", "US", "SAC", "NA"}
	if got := router.Groups(); !reflect.DeepEqual(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}
}

// TestParseRoutes_Invalid tests malformed route tables
func TestParseRoutes_Invalid(t *testing.T) {
	for _, raw := range []string{"br", "BR=US", "br=US;ind=US", "br=us/../x"} {
		if _, err := ParseRoutes(raw); err == nil {
			t.Errorf("ParseRoutes(%q) = nil error, want error", raw)
		}
	}
	routes, err := ParseRoutes("  ")
	if err != nil || len(routes) != 0 {
		t.Errorf("ParseRoutes(blank) = %v, %v; want empty", routes, err)
	}
}

// TestNewRouter_AppendsRoutedGroups tests that routed groups are listed
func TestNewRouter_AppendsRoutedGroups(t *testing.T) {
	router, err := NewRouter(map[string]string{"ZZ": "z", "AA": "a"}, "bd", []string{"BD"})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	want := []string{"BD", "AA", "ZZ"}
	if got := router.Groups(); !reflect.DeepEqual(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}
	if _, err := NewRouter(nil, "", nil); err == nil {
		t.Error("NewRouter() with empty default pool should fail")
	}
}

// TestParseGroups tests normalization and de-duplication
func TestParseGroups(t *testing.T) {
	groups, err := ParseGroups("ind, br,IND,,us")
	if err != nil {
		t.Fatalf("ParseGroups() error = %v", err)
	}
	want := []string{"IND", "BR", "US"}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("ParseGroups() = %v, want %v", groups, want)
	}
	if _, err := ParseGroups("BR,-x"); err == nil {
		t.Error("ParseGroups() with invalid group should fail")
	}
}

// TestDecodePool tests the pool document format
func TestDecodePool(t *testing.T) {
	pool, err := decodePool([]byte(`[{"token":"a","uid":123},{"token":"b","uid":"456","label":"x"},{"token":"c","uid":null}]`))
	if err != nil {
		t.Fatalf("decodePool() error = %v", err)
	}
	want := []Credential{
		{Token: "a", AccountID: "123"},
		{Token: "b", AccountID: "456", Label: "x"},
		{Token: "c"},
	}
	if !reflect.DeepEqual(pool, want) {
		t.Errorf("decodePool() = %+v, want %+v", pool, want)
	}

	invalid := []string{
		`{"token":"a"}`,
		`[{"token":"a"},{"uid":1}]`,
		`[{"token":5}]`,
		`["a","b"]`,
		`not json`,
	}
	for _, doc := range invalid {
		if _, err := decodePool([]byte(doc)); err == nil {
			t.Errorf("decodePool(%s) = nil error, want error", doc)
		}
	}
}

// TestFileProvider tests loading, absence and malformed files
func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("br.json", `[{"token":"t1"},{"token":"t2"}]`)
	write("br_measure.json", `[{"token":"m1"}]`)
	write("ind.json", `{"broken":true}`)

	provider := NewFileProvider(dir, testRouter(t))
	ctx := context.Background()

	if got := provider.LoadPool(ctx, "us", Dispatch); len(got) != 2 || got[0].Token != "t1" {
		t.Errorf("LoadPool(US, dispatch) = %+v, want 2 credentials from br.json", got)
	}
	if got := provider.LoadPool(ctx, "NA", Measurement); len(got) != 1 || got[0].Token != "m1" {
		t.Errorf("LoadPool(NA, measure) = %+v, want m1", got)
	}
	if got := provider.LoadPool(ctx, "IND", Dispatch); len(got) != 0 {
		t.Errorf("LoadPool(IND) with malformed file = %+v, want empty", got)
	}
	if got := provider.LoadPool(ctx, "BD", Dispatch); len(got) != 0 {
		t.Errorf("LoadPool(BD) with missing file = %+v, want empty", got)
	}

	wantPath := filepath.Join(dir, "ind_measure.json")
	if got := provider.PoolPath("ind", Measurement); got != wantPath {
		t.Errorf("PoolPath() = %q, want %q", got, wantPath)
	}
}

// fakeLister implements listReader with canned list contents
type fakeLister struct {
	lists map[string][]string
	err   error
	keys  []string
}

func (f *fakeLister) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.keys = append(f.keys, key)
	return redis.NewStringSliceResult(f.lists[key], f.err)
}

// TestRedisProvider tests key layout and member decoding
func TestRedisProvider(t *testing.T) {
	lister := &fakeLister{lists: map[string][]string{
		"relay:br:dispatch": {`{"token":"t1","uid":7}`, "t2"},
		"relay:br:measure":  {"m1"},
		"relay:bd:dispatch": {`{"uid":1}`},
	}}
	provider := NewRedisProvider(lister, testRouter(t), WithKeyPrefix("relay:"))
	ctx := context.Background()

	got := provider.LoadPool(ctx, "US", Dispatch)
	want := []Credential{{Token: "t1", AccountID: "7"}, {Token: "t2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadPool(US, dispatch) = %+v, want %+v", got, want)
	}
	if got := provider.LoadPool(ctx, "BR", Measurement); len(got) != 1 || got[0].Token != "m1" {
		t.Errorf("LoadPool(BR, measure) = %+v, want m1", got)
	}
	if got := provider.LoadPool(ctx, "EU", Dispatch); len(got) != 0 {
		t.Errorf("LoadPool(EU) with invalid member = %+v, want empty", got)
	}
	if got := provider.LoadPool(ctx, "IND", Dispatch); len(got) != 0 {
		t.Errorf("LoadPool(IND) with missing key = %+v, want empty", got)
	}

	lister.err = errors.New("connection refused")
	if got := provider.LoadPool(ctx, "US", Dispatch); len(got) != 0 {
		t.Errorf("LoadPool() on redis error = %+v, want empty", got)
	}
}

// countingProvider counts loads and serves a fixed pool
type countingProvider struct {
	pool  []Credential
	loads int
}

func (c *countingProvider) LoadPool(ctx context.Context, group string, purpose Purpose) []Credential {
	c.loads++
	return c.pool
}

// TestCachedProvider tests memoization, empty-pool bypass and purge
func TestCachedProvider(t *testing.T) {
	next := &countingProvider{pool: []Credential{{Token: "a"}}}
	provider := NewCachedProvider(next, time.Minute)
	ctx := context.Background()

	provider.LoadPool(ctx, "br", Dispatch)
	provider.LoadPool(ctx, "BR", Dispatch)
	if next.loads != 1 {
		t.Errorf("loads = %d after two cached reads, want 1", next.loads)
	}

	provider.LoadPool(ctx, "BR", Measurement)
	if next.loads != 2 {
		t.Errorf("loads = %d, want separate entry per purpose", next.loads)
	}

	provider.(*CachedProvider).Purge()
	provider.LoadPool(ctx, "BR", Dispatch)
	if next.loads != 3 {
		t.Errorf("loads = %d after purge, want 3", next.loads)
	}

	empty := &countingProvider{}
	cachedEmpty := NewCachedProvider(empty, time.Minute)
	cachedEmpty.LoadPool(ctx, "BR", Dispatch)
	cachedEmpty.LoadPool(ctx, "BR", Dispatch)
	if empty.loads != 2 {
		t.Errorf("empty pools must not be cached, loads = %d", empty.loads)
	}

	if NewCachedProvider(next, 0) != Provider(next) {
		t.Error("NewCachedProvider() with zero TTL should return the wrapped provider")
	}
}

// TestPurpose_String tests purpose names used in paths and keys
func TestPurpose_String(t *testing.T) {
	if Dispatch.String() != "dispatch" || Measurement.String() != "measure" {
		t.Errorf("unexpected purpose names %q %q", Dispatch, Measurement)
	}
	if !(Credential{Token: " x "}).Valid() || (Credential{Token: "  "}).Valid() {
		t.Error("Credential.Valid() mismatch")
	}
}
