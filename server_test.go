package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regional-means/aggregator"
	"regional-means/logging"
	"regional-means/models"
	"regional-means/providers"
	"regional-means/regions"
)

// writeArchive сохраняет проверочное поле 5x4 с выбросом -7
func writeArchive(t *testing.T, dir string) {
	t.Helper()
	data := &models.GriddedData{
		Variable: "tas",
		Lat:      []float64{90, 45, 0, -45, -90},
		Lon:      []float64{0, 90, 180, 270},
		Times:    []float64{2000},
		Data: [][][]float64{{
			{1, 1, 1, 1},
			{1, 1, 1, 1},
			{1, 1, 1, 1},
			{1, -7, 1, 1},
			{1, 1, 1, 1},
		}},
	}
	f, err := os.Create(filepath.Join(dir, "ens"+providers.ArchiveExt))
	require.NoError(t, err)
	require.NoError(t, providers.SaveArchive(f, data))
	require.NoError(t, f.Close())
}

func newTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	writeArchive(t, dir)

	log := logging.Discard()
	a := aggregator.NewAggregator(regions.DefaultCatalog(), 1, 2, log)
	a.AddProvider(providers.NewArchiveProvider())
	return newRouter(a, dir, "tas", log)
}

func get(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAPI_Means(t *testing.T) {
	router := newTestRouter(t)

	w := get(t, router, http.MethodGet, "/api/means?file=ens.msgpack.zst&regions=Arctic,Antarctica,Australasia")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rm models.RegionalMeans
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rm))
	assert.True(t, rm.Flipped)
	require.Len(t, rm.Regions, 3)
	assert.Equal(t, "Arctic", rm.Regions[0].Name)
	assert.InDelta(t, 1.0, rm.Regions[0].Values[0], 1e-12)
	assert.InDelta(t, 1.0, rm.Regions[1].Values[0], 1e-12)

	// Australasia (110..180E, 0..50S) захватывает только lat=0 и lat=-45 на долготе 180
	assert.InDelta(t, 1.0, rm.Regions[2].Values[0], 1e-12)
}

func TestAPI_Global(t *testing.T) {
	router := newTestRouter(t)

	w := get(t, router, http.MethodGet, "/api/global?file=ens.msgpack.zst")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var hm models.HemisphericMeans
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hm))
	assert.InDelta(t, 1.0, hm.North[0], 1e-12)
	assert.Less(t, hm.South[0], 1.0)
	assert.False(t, math.IsNaN(hm.Global[0]))
}

func TestAPI_Errors(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"NoFile", http.MethodGet, "/api/means", http.StatusBadRequest},
		{"Traversal", http.MethodGet, "/api/means?file=../secret.msgpack.zst", http.StatusBadRequest},
		{"Missing", http.MethodGet, "/api/means?file=none.msgpack.zst", http.StatusNotFound},
		{"Unsupported", http.MethodGet, "/api/global?file=ens.grib", http.StatusBadRequest},
		{"UnknownRegion", http.MethodGet, "/api/means?file=ens.msgpack.zst&regions=Atlantis", http.StatusBadRequest},
		{"ClearCache", http.MethodDelete, "/api/cache", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, router, tc.method, tc.target)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestAPI_HealthAndRegions(t *testing.T) {
	router := newTestRouter(t)

	w := get(t, router, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"archive"`)

	w = get(t, router, http.MethodGet, "/api/regions")
	require.Equal(t, http.StatusOK, w.Code)
	var catalog regions.Catalog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	assert.Equal(t, regions.DefaultCatalog(), catalog)
}
