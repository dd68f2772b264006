package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/coldfinder/internal/catalog"
	"github.com/hyperjump/coldfinder/internal/config"
	"github.com/hyperjump/coldfinder/internal/models"
	"github.com/hyperjump/coldfinder/internal/search"
	"github.com/hyperjump/coldfinder/internal/server"
)

const fixtureCatalog = `
version: "test-1"
crops:
  - name: Onion
    idealTemperature: 2
facilities:
  - id: fifty
    name: {en: "Fifty Paise Store"}
    location: {lat: 9.9, lon: 78.1, name: "Madurai"}
    supportedCrops: [Onion]
    tempRange: {min: 0, max: 5}
    totalCapacity: 100
    availableCapacity: 10
    costPerKg: 0.50
  - id: forty-five
    name: {en: "Forty-Five Paise Store"}
    location: {lat: 10.3, lon: 77.9, name: "Dindigul"}
    supportedCrops: [Onion]
    tempRange: {min: 0, max: 5}
    totalCapacity: 100
    availableCapacity: 10
    costPerKg: 0.45
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: error\n"+content), 0600))
	return path
}

func writeCatalog(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func decodeResult(t *testing.T, out string) models.RankedResult {
	t.Helper()
	var result models.RankedResult
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	return result
}

func TestSearchCmd_EmbeddedCatalog(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "")
	out, err := execute(t, "--config", cfgPath, "search", "--crop", "Potato", "--quantity", "500kg", "--json")
	require.NoError(t, err)

	result := decodeResult(t, out)
	assert.Equal(t, models.SourceLocalFallback, result.Source)
	require.Len(t, result.Facilities, 1)
	assert.Equal(t, "cs-001", result.Facilities[0].ID)
	assert.Equal(t, "500kg", result.Query.Quantity)
}

func TestSearchCmd_CatalogFileRanksCheapestFirst(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, fixtureCatalog)
	cfgPath := writeConfig(t, dir, "catalog:\n  path: ./catalog.yaml\n")

	out, err := execute(t, "--config", cfgPath, "search", "onion", "--json")
	require.NoError(t, err)
	result := decodeResult(t, out)
	ids := make([]string, len(result.Facilities))
	for i, f := range result.Facilities {
		ids[i] = f.ID
	}
	assert.Equal(t, []string{"forty-five", "fifty"}, ids)
	assert.Equal(t, "test-1", result.CatalogVersion)
}

func TestSearchCmd_RemoteThenLocal(t *testing.T) {
	var calls atomic.Int32
	remoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","count":1,"facilities":[{"id":"live-1","status":"Available","availableCapacity":3}]}`))
	}))
	defer remoteSrv.Close()

	cfgPath := writeConfig(t, t.TempDir(), "remote:\n  url: "+remoteSrv.URL+"\n")
	out, err := execute(t, "--config", cfgPath, "search", "--crop", "Potato", "--json")
	require.NoError(t, err)
	result := decodeResult(t, out)
	assert.Equal(t, models.SourceRemote, result.Source)
	require.Len(t, result.Facilities, 1)
	assert.Equal(t, "live-1", result.Facilities[0].ID)
	assert.Equal(t, int32(1), calls.Load())

	out, err = execute(t, "--config", cfgPath, "search", "--crop", "Potato", "--local", "--json")
	require.NoError(t, err)
	assert.Equal(t, models.SourceLocalFallback, decodeResult(t, out).Source)
	assert.Equal(t, int32(1), calls.Load(), "--local must not contact the remote service")
}

func TestSearchCmd_RemoteFailureFallsBack(t *testing.T) {
	remoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer remoteSrv.Close()

	cfgPath := writeConfig(t, t.TempDir(), "remote:\n  url: "+remoteSrv.URL+"\n")
	out, err := execute(t, "--config", cfgPath, "search", "--crop", "Banana", "--json")
	require.NoError(t, err)
	result := decodeResult(t, out)
	assert.Equal(t, models.SourceLocalFallback, result.Source)
	require.NotNil(t, result.Selected)
	assert.Equal(t, "cs-004", result.Selected.ID)
}

func TestSearchCmd_TextOutput(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "")
	out, err := execute(t, "--config", cfgPath, "search", "--crop", "Banana", "--lang", "ta")
	require.NoError(t, err)
	assert.Contains(t, out, "திருச்சி மண்டல சேமிப்பு கிடங்கு")
	assert.Contains(t, out, "source: LocalFallback")
}

func TestSearchCmd_RequiresCrop(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "")
	_, err := execute(t, "--config", cfgPath, "search", "--location", "Madurai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crop is required")
}

func TestSearchViaHTTP(t *testing.T) {
	kb, err := catalog.Default()
	require.NoError(t, err)
	store := catalog.NewStore(kb, "embedded")
	engine := search.NewEngine(store, nil, nil, nil)
	defer engine.Close()
	srv := server.NewServer(engine, store, &config.ServerConfig{}, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	result, err := searchViaHTTP(context.Background(), ts.URL+"/", &models.Query{Crop: "Grapes"}, true)
	require.NoError(t, err)
	require.Len(t, result.Facilities, 1)
	assert.Equal(t, "cs-005", result.Facilities[0].ID)

	out, err := execute(t, "search", "--server", ts.URL, "--crop", "mango", "--location", "coimbatore", "--json")
	require.NoError(t, err)
	assert.Empty(t, decodeResult(t, out).Facilities)
}

func TestSearchViaHTTP_errorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()
	_, err := searchViaHTTP(context.Background(), ts.URL, &models.Query{Crop: "Potato"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	good := writeCatalog(t, dir, fixtureCatalog)
	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, `ok (version "test-1", 2 facilities, 1 crops)`)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(strings.Replace(fixtureCatalog, "availableCapacity: 10\n    costPerKg: 0.45", "availableCapacity: 500\n    costPerKg: 0.45", 1)), 0600))
	_, err = execute(t, "validate", bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
	assert.Contains(t, err.Error(), "forty-five")

	_, err = execute(t, "validate", filepath.Join(dir, "catalog.csv"))
	assert.Error(t, err)
}

func TestImportAndCropsCmd(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeCatalog(t, dir, fixtureCatalog)
	dbPath := filepath.Join(dir, "catalog.db")

	out, err := execute(t, "import", catalogPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 facilities and 1 crops")

	cfgPath := writeConfig(t, dir, "catalog:\n  database_path: ./catalog.db\n")
	out, err = execute(t, "--config", cfgPath, "crops", "--json")
	require.NoError(t, err)
	var crops []models.CropProfile
	require.NoError(t, json.Unmarshal([]byte(out), &crops))
	require.Len(t, crops, 1)
	assert.Equal(t, "Onion", crops[0].Name)

	out, err = execute(t, "--config", cfgPath, "search", "--crop", "Onion", "--json")
	require.NoError(t, err)
	assert.Equal(t, "forty-five", decodeResult(t, out).Selected.ID)
}

func TestImportCmd_requiresDB(t *testing.T) {
	catalogPath := writeCatalog(t, t.TempDir(), fixtureCatalog)
	_, err := execute(t, "import", catalogPath)
	assert.Error(t, err)
}

func TestInitConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "coldfinder.yaml")
	out, err := execute(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, resolved, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, config.DefaultRemoteTimeout, cfg.Search.RemoteTimeout)

	_, err = execute(t, "init-config", path)
	assert.Error(t, err, "existing file needs --force")
	_, err = execute(t, "init-config", path, "--force")
	assert.NoError(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "coldfinder version "+version+"\n", out)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

func TestLoadConfig_cwdFallback(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server:\n  port: 9191\n")
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), resolved)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadConfig_defaultsWhenMissing(t *testing.T) {
	if fileExists(defaultConfigPath) {
		t.Skip("a system config is installed")
	}
	chdir(t, t.TempDir())
	cfg, resolved, err := loadConfig(defaultConfigPath)
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Equal(t, "embedded", cfg.Catalog.Source())
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadConfig_explicitMissing(t *testing.T) {
	_, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCatalogWatcher_ReloadsAndKeepsSnapshotOnError(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeCatalog(t, dir, fixtureCatalog)
	cfg := &config.Config{Catalog: config.CatalogConfig{Path: catalogPath}}
	config.ApplyDefaults(cfg)
	components, err := initializeComponents(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer components.Close()

	w := newCatalogWatcher(components, catalogPath, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(catalogPath, []byte(strings.Replace(fixtureCatalog, `"test-1"`, `"test-2"`, 1)), 0600))
	require.NoError(t, w.Trigger())
	assert.Eventually(t, func() bool {
		return components.Store.Snapshot().Version() == "test-2"
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(catalogPath, []byte("version: broken\nfacilities:\n  - id: ''\n"), 0600))
	require.NoError(t, w.Trigger())
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, "test-2", components.Store.Snapshot().Version(), "invalid catalog must not replace the snapshot")

	result := components.Engine.Search(context.Background(), &models.Query{Crop: "onion"})
	assert.Equal(t, "test-2", result.CatalogVersion)
}

func TestSearchCmd_MissingDatabaseFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "catalog:\n  database_path: ./typo/catalgo.db\n")
	_, err := execute(t, "--config", cfgPath, "search", "--crop", "Potato")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
	_, statErr := os.Stat(filepath.Join(dir, "typo"))
	assert.True(t, os.IsNotExist(statErr))
}
