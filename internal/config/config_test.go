package config

import (
	"bytes"
	"image/color"
	"testing"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image2c/pkg/colorset"
	"image2c/pkg/quantize"
)

func TestParseDefaults(t *testing.T) {
	var out bytes.Buffer
	c, err := Parse([]string{"logo.png"}, &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"logo.png"}, c.Inputs)
	assert.Equal(t, "lanczos", c.FilterName)
	assert.Equal(t, quantize.BiasedMedianCut{Bias: quantize.DefaultBias}, c.Algorithm)
	assert.Equal(t, quantize.MostDiffusion, c.Dither)
	assert.Equal(t, color.RGBA{255, 0, 255, 255}, c.Transparent)
	assert.Nil(t, c.Foreground)
	assert.Equal(t, 30*time.Second, c.Timeout)

	o := c.Options()
	assert.True(t, o.LittleEndian)
	assert.True(t, o.Flash)
	assert.False(t, o.TransparentChange)
	assert.Equal(t, 0, o.Depth)
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer
	c, err := Parse([]string{
		"-o", "icon.c", "--name", "icon",
		"--big-endian", "--no-flash", "--transparent-change", "--depth", "16",
		"--gray", "--width", "64", "--filter", "box",
		"--colors", "16", "--algorithm", "median", "--dither", "simplest",
		"--fg", "#f00", "--swap-fg", "--transparent", "#102030",
		"--debug", "in.gif",
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "icon.c", c.Out)
	assert.Equal(t, "icon", c.Name)
	assert.Equal(t, 64, c.Width)
	assert.Equal(t, 0, c.Height)
	assert.Equal(t, 16, c.Colors)
	assert.Equal(t, quantize.MedianCut{}, c.Algorithm)
	assert.Equal(t, quantize.SimplestDiffusion, c.Dither)
	require.NotNil(t, c.Foreground)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, *c.Foreground)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 255}, c.Transparent)
	assert.True(t, c.SwapFG)
	assert.True(t, c.Gray)
	assert.True(t, c.Debug)

	o := c.Options()
	assert.False(t, o.LittleEndian)
	assert.False(t, o.Flash)
	assert.True(t, o.TransparentChange)
	assert.Equal(t, 16, o.Depth)
}

func TestParseInvalid(t *testing.T) {
	cases := [][]string{
		{},
		{"-o", "x.c", "a.png", "b.png"},
		{"--name", "x", "a.png", "b.png"},
		{"--depth", "8", "a.png"},
		{"--width", "-1", "a.png"},
		{"--colors", "300", "a.png"},
		{"--timeout", "0s", "a.png"},
		{"--filter", "bicubic", "a.png"},
		{"--algorithm", "octree", "a.png"},
		{"--dither", "bayer", "a.png"},
		{"--fg", "red", "a.png"},
		{"--transparent", "#12345", "a.png"},
	}
	for _, args := range cases {
		var out bytes.Buffer
		_, err := Parse(args, &out)
		assert.True(t, errors.Is(err, colorset.ErrInvalidOption), "%v: %v", args, err)
	}
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := Parse([]string{"--help"}, &out)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, out.String(), "Usage: image2c")
	assert.Contains(t, out.String(), "--transparent")
}

func TestParseHexColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"#000":    {0, 0, 0, 255},
		"#fff":    {255, 255, 255, 255},
		"#1a2":    {0x11, 0xaa, 0x22, 255},
		"#FF00FF": {255, 0, 255, 255},
		"#0a0B0c": {10, 11, 12, 255},
	}
	for s, want := range cases {
		got, err := ParseHexColor(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	for _, s := range []string{"", "fff", "#ffff", "#gggggg", "#12345z"} {
		_, err := ParseHexColor(s)
		assert.True(t, errors.Is(err, colorset.ErrInvalidOption), s)
	}
}
