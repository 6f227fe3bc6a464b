package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dummycoder/app"
	"dummycoder/domain/dummy"
	"dummycoder/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080", GinMode: "test"},
		Upload: config.UploadConfig{MaxSizeMB: 1, CSVDelimiter: ';'},
		Encoding: config.EncodingConfig{
			DefaultSeparator: ",",
			ConflictPolicy:   dummy.ConflictSuffix,
		},
		Export: config.ExportConfig{DownloadName: "out.xlsx"},
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_WiresConfigIntoService(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	outcome, err := c.EncodeService.Preview(context.Background(), app.EncodeRequest{
		Filename:      "semi.csv",
		File:          strings.NewReader("Hobby;Hobby_Hiking\nHiking, Reading;x\n"),
		Columns:       []string{"Hobby"},
		Separator:     ",",
		KeepOriginals: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hobby", "Hobby_Hiking", "Hobby_Hiking_1", "Hobby_Reading"}, outcome.Columns)
}

func TestNewServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := New(testConfig())
	require.NoError(t, err)

	server, err := c.NewServer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
