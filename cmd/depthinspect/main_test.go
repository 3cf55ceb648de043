package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
	"go.viam.com/test"

	"go.viam.com/depthinspect/config"
	"go.viam.com/depthinspect/logging"
	"go.viam.com/depthinspect/rimage"
	"go.viam.com/depthinspect/viewer"
)

func TestRunInspectorWritesWindows(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	cfg := config.Default()
	cfg.Web.Listen = ""
	cfg.OutputDir = out
	cfg.MaxFrames = 2
	cfg.Source.Attributes = map[string]interface{}{"width": 32, "height": 24, "frame_rate": 1000}

	test.That(t, runInspector(context.Background(), cfg, logging.NewTestLogger(t)), test.ShouldBeNil)

	for _, name := range []string{viewer.WindowFrame, viewer.WindowDepth} {
		_, err := os.Stat(filepath.Join(out, name+".png"))
		test.That(t, err, test.ShouldBeNil)
	}
	// nothing hovered, so no grid
	_, err := os.Stat(filepath.Join(out, viewer.WindowRegion+".png"))
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)

	dm, err := rimage.ReadDepthMapFromFile(filepath.Join(out, viewer.WindowDepth+".png"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dm.Width(), test.ShouldEqual, 32)
}

func TestRunInspectorWithWebServer(t *testing.T) {
	cfg := config.Default()
	cfg.Web.Listen = "localhost:0"
	cfg.MaxFrames = 1
	cfg.Source.Attributes = map[string]interface{}{"width": 16, "height": 16, "frame_rate": 1000}
	test.That(t, runInspector(context.Background(), cfg, logging.NewTestLogger(t)), test.ShouldBeNil)
}

func TestRunInspectorBadSource(t *testing.T) {
	cfg := config.Default()
	cfg.Web.Listen = ""
	cfg.Source = config.SourceConfig{Type: config.SourceImageFile, Attributes: map[string]interface{}{"dir": t.TempDir()}}
	err := runInspector(context.Background(), cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no files matching")
}

func parseFlags(args ...string) (*config.Config, error) {
	app := newApp()
	var got *config.Config
	app.Action = func(c *cli.Context) error {
		var err error
		got, err = configFromFlags(c)
		return err
	}
	err := app.Run(append([]string{"depthinspect"}, args...))
	return got, err
}

func TestFlags(t *testing.T) {
	got, err := parseFlags("--radius", "0", "--caption", "stats", "--listen", "", "--max-frames", "5", "--debug")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Radius, test.ShouldEqual, uint(0))
	test.That(t, got.Caption, test.ShouldEqual, config.CaptionStats)
	test.That(t, got.Web.Listen, test.ShouldBeEmpty)
	test.That(t, got.MaxFrames, test.ShouldEqual, 5)
	test.That(t, got.LogLevel, test.ShouldEqual, logging.DEBUG)
	test.That(t, got.CellSize, test.ShouldEqual, config.DefaultCellSize)

	got, err = parseFlags("--source", "image_file", "--dir", "/frames")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Source.Type, test.ShouldEqual, config.SourceImageFile)
	test.That(t, got.Source.Attributes["dir"], test.ShouldEqual, "/frames")

	_, err = parseFlags("--cell-size", "0")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "flags.cell_size")
}

func TestConfigFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspect.json")
	test.That(t, os.WriteFile(path, []byte(`{"radius": 5, "caption": "none", "web": {"listen": ""}}`), 0o600), test.ShouldBeNil)

	got, err := parseFlags("-c", path, "--radius", "2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Radius, test.ShouldEqual, uint(2))
	test.That(t, got.Caption, test.ShouldEqual, config.CaptionNone)
	test.That(t, got.Web.Listen, test.ShouldBeEmpty)
}
