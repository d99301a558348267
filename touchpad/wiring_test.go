package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/config"
	"github.com/itohio/gotouch/pkg/xpt2046"
)

func TestOpenTransport_Mock(t *testing.T) {
	cfg := config.Default()
	cfg.Bus.Kind = "mock"

	bus, closeFn, err := openTransport(cfg)
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.IsType(t, &xpt2046.Mock{}, bus)
	assert.NoError(t, closeFn())
}

func TestOpenTransport_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Bus.Kind = "usb"

	_, closeFn, err := openTransport(cfg)
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	profile := calib.Profile{
		Min: calib.ReferencePoint{X: 90, Y: 50, RawX: 1201, RawY: 1380},
		Max: calib.ReferencePoint{X: 290, Y: 210, RawX: 3507, RawY: 3499},
	}

	for _, kind := range []string{"file", "prefs"} {
		t.Run(kind, func(t *testing.T) {
			cfg := config.Default()
			cfg.Calibration.Store = kind
			cfg.Calibration.Path = kind + ".dat"

			store, db, err := openStore(cfg, dir)
			require.NoError(t, err)
			if db != nil {
				defer db.Close()
			}
			assert.Equal(t, kind == "prefs", db != nil)

			mapper := calib.NewMapper(320, 240, calib.Rotation0)
			ok, err := restoreCalibration(store, mapper)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, calib.DefaultProfile(), mapper.Profile())

			require.NoError(t, store.Save(profile))
			ok, err = restoreCalibration(store, mapper)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, profile, mapper.Profile())
		})
	}

	assert.FileExists(t, filepath.Join(dir, "file.dat"))
}

func TestRestoreCalibration_Degenerate(t *testing.T) {
	store := calib.NewMemoryStore()
	bad := calib.DefaultProfile()
	bad.Max.RawX = bad.Min.RawX
	require.NoError(t, store.Save(bad))

	mapper := calib.NewMapper(320, 240, calib.Rotation0)
	ok, err := restoreCalibration(store, mapper)
	assert.ErrorIs(t, err, calib.ErrDegenerateProfile)
	assert.False(t, ok)
	assert.Equal(t, calib.DefaultProfile(), mapper.Profile())
}

func TestCalibrationTargets(t *testing.T) {
	assert.Equal(t, calib.DefaultTargets(), calibrationTargets(config.Default()))
}
