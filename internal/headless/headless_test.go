package headless

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nconklindev/jsonxl/internal/converter"
	"github.com/nconklindev/jsonxl/internal/types"
)

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1},{"id":2}]`)
	}))
	defer srv.Close()

	outputFile := filepath.Join(t.TempDir(), "out.xlsx")
	var out bytes.Buffer

	err := Run(context.Background(), converter.NewTask(converter.Options{}),
		types.ConversionRequest{URL: srv.URL, OutputPath: outputFile}, &out, io.Discard)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := fmt.Sprintf("File generated successfully: %s (2 rows, 1 columns)", outputFile)
	if !strings.Contains(out.String(), want) {
		t.Errorf("output = %q; want %q", out.String(), want)
	}
}

func TestRun_Failure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var out bytes.Buffer
	err := Run(context.Background(), converter.NewTask(converter.Options{}),
		types.ConversionRequest{URL: srv.URL, OutputPath: filepath.Join(t.TempDir(), "out.xlsx")}, &out, io.Discard)
	if err == nil {
		t.Fatal("expected an error")
	}
	if converter.KindOf(err) != converter.KindNetwork {
		t.Errorf("KindOf(%v) = %s; want network", err, converter.KindOf(err))
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on failure, got %q", out.String())
	}
}
