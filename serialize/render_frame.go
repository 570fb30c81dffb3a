// Package serialize also implements the compact binary "render frame"
// codec of spec §6.4: a *basic* variant (material + 8-bit fill per
// cell) and a *debug* variant (adds COM, velocity, pressures, and
// pressure gradient at fixed-point quantization, 24 bytes/cell).
// Grounded on telemetry/output.go's CSV marshal-on-demand pattern,
// adapted from CSV rows to packed binary cell records via
// encoding/binary.
package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pthm-cable/granule/grid"
	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/sim"
)

const (
	renderFrameMagicBasic = 0x42 // 'B'
	renderFrameMagicDebug = 0x44 // 'D'

	basicCellBytes = 2
	debugCellBytes = 24

	comScale      = 32767.0
	velocityLimit = 10.0
	velocityScale = 32767.0
	pressureLimit = 1000.0
	pressureScale = 65535.0
)

// quantizeSigned maps v, first clamped to [-limit, limit], onto
// [-32767, 32767] (spec §6.4's COM/velocity quantization).
func quantizeSigned(v, limit float64) int16 {
	if v > limit {
		v = limit
	} else if v < -limit {
		v = -limit
	}
	return int16(math.Round(v / limit * comScale))
}

func dequantizeSigned(q int16, limit float64) float64 {
	return float64(q) / comScale * limit
}

// quantizeUnsigned maps v, first clamped to [0, limit], onto
// [0, 65535] (spec §6.4's pressure quantization).
func quantizeUnsigned(v, limit float64) uint16 {
	if v > limit {
		v = limit
	} else if v < 0 {
		v = 0
	}
	return uint16(math.Round(v / limit * pressureScale))
}

func dequantizeUnsigned(q uint16, limit float64) float64 {
	return float64(q) / pressureScale * limit
}

// EncodeBasicFrame renders w as the *basic* binary frame: a 10-byte
// header (magic byte, reserved byte, then width and height as uint32
// LE) followed by 2 bytes/cell
// (material, fill quantized to 8 bits).
func EncodeBasicFrame(w *sim.World) []byte {
	width, height := w.Dimensions()
	buf := new(bytes.Buffer)
	buf.WriteByte(renderFrameMagicBasic)
	buf.WriteByte(0) // reserved
	binary.Write(buf, binary.LittleEndian, uint32(width))
	binary.Write(buf, binary.LittleEndian, uint32(height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := w.Grid.CellAt(x, y)
			buf.WriteByte(byte(c.Material))
			buf.WriteByte(uint8(math.Round(clamp01(c.Fill) * 255)))
		}
	}
	return buf.Bytes()
}

// DecodeBasicFrame parses a basic frame produced by EncodeBasicFrame
// into per-cell (material, fill) pairs, row-major.
func DecodeBasicFrame(data []byte) (width, height int, materials []material.Type, fills []float64, err error) {
	r := bytes.NewReader(data)
	magic, _ := r.ReadByte()
	if magic != renderFrameMagicBasic {
		return 0, 0, nil, nil, fmt.Errorf("serialize: not a basic render frame (magic %#x)", magic)
	}
	r.ReadByte() // reserved

	var w32, h32 uint32
	if err := binary.Read(r, binary.LittleEndian, &w32); err != nil {
		return 0, 0, nil, nil, fmt.Errorf("serialize: reading width: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &h32); err != nil {
		return 0, 0, nil, nil, fmt.Errorf("serialize: reading height: %w", err)
	}
	width, height = int(w32), int(h32)

	n := width * height
	materials = make([]material.Type, n)
	fills = make([]float64, n)
	for i := 0; i < n; i++ {
		m, err := r.ReadByte()
		if err != nil {
			return 0, 0, nil, nil, fmt.Errorf("serialize: reading cell %d material: %w", i, err)
		}
		f, err := r.ReadByte()
		if err != nil {
			return 0, 0, nil, nil, fmt.Errorf("serialize: reading cell %d fill: %w", i, err)
		}
		materials[i] = material.Type(m)
		fills[i] = float64(f) / 255.0
	}
	return width, height, materials, fills, nil
}

// debugCell is the exact 24-byte wire layout of spec §6.4's debug
// variant.
type debugCell struct {
	Material           uint8
	Fill               uint8
	HasAnySupport      uint8
	HasVerticalSupport uint8
	ComX               int16
	ComY               int16
	VelX               int16
	VelY               int16
	PHydro             uint16
	PDynamic           uint16
	GradX              float32
	GradY              float32
}

// EncodeDebugFrame renders w as the *debug* binary frame: the same
// header as the basic variant, followed by 24 bytes/cell carrying
// material, fill, support flags, COM, velocity, pressure components,
// and the pressure gradient, all at the fixed-point quantization of
// spec §6.4.
func EncodeDebugFrame(w *sim.World) []byte {
	width, height := w.Dimensions()
	buf := new(bytes.Buffer)
	buf.WriteByte(renderFrameMagicDebug)
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, uint32(width))
	binary.Write(buf, binary.LittleEndian, uint32(height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := w.Grid.CellAt(x, y)
			dc := debugCell{
				Material:           uint8(c.Material),
				Fill:               uint8(math.Round(clamp01(c.Fill) * 255)),
				HasAnySupport:      boolByte(c.HasAnySupport),
				HasVerticalSupport: boolByte(c.HasVerticalSupport),
				ComX:               quantizeSigned(c.COM.X, 1.0),
				ComY:               quantizeSigned(c.COM.Y, 1.0),
				VelX:               quantizeSigned(c.Velocity.X, velocityLimit),
				VelY:               quantizeSigned(c.Velocity.Y, velocityLimit),
				PHydro:             quantizeUnsigned(c.HydrostaticPressure, pressureLimit),
				PDynamic:           quantizeUnsigned(c.DynamicPressure, pressureLimit),
				GradX:              float32(c.PressureGradient.X),
				GradY:              float32(c.PressureGradient.Y),
			}
			binary.Write(buf, binary.LittleEndian, dc)
		}
	}
	return buf.Bytes()
}

// DebugCellView is the decoded, dequantized counterpart of debugCell.
type DebugCellView struct {
	Material           material.Type
	Fill               float64
	HasAnySupport      bool
	HasVerticalSupport bool
	COM                grid.Vec2
	Velocity           grid.Vec2
	HydrostaticPressure float64
	DynamicPressure     float64
	PressureGradient    grid.Vec2
}

// DecodeDebugFrame parses a debug frame produced by EncodeDebugFrame.
func DecodeDebugFrame(data []byte) (width, height int, cells []DebugCellView, err error) {
	r := bytes.NewReader(data)
	magic, _ := r.ReadByte()
	if magic != renderFrameMagicDebug {
		return 0, 0, nil, fmt.Errorf("serialize: not a debug render frame (magic %#x)", magic)
	}
	r.ReadByte()

	var w32, h32 uint32
	if err := binary.Read(r, binary.LittleEndian, &w32); err != nil {
		return 0, 0, nil, fmt.Errorf("serialize: reading width: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &h32); err != nil {
		return 0, 0, nil, fmt.Errorf("serialize: reading height: %w", err)
	}
	width, height = int(w32), int(h32)

	n := width * height
	cells = make([]DebugCellView, n)
	for i := 0; i < n; i++ {
		var dc debugCell
		if err := binary.Read(r, binary.LittleEndian, &dc); err != nil {
			return 0, 0, nil, fmt.Errorf("serialize: reading cell %d: %w", i, err)
		}
		cells[i] = DebugCellView{
			Material:            material.Type(dc.Material),
			Fill:                float64(dc.Fill) / 255.0,
			HasAnySupport:       dc.HasAnySupport != 0,
			HasVerticalSupport:  dc.HasVerticalSupport != 0,
			COM:                 grid.Vec2{X: dequantizeSigned(dc.ComX, 1.0), Y: dequantizeSigned(dc.ComY, 1.0)},
			Velocity:            grid.Vec2{X: dequantizeSigned(dc.VelX, velocityLimit), Y: dequantizeSigned(dc.VelY, velocityLimit)},
			HydrostaticPressure: dequantizeUnsigned(dc.PHydro, pressureLimit),
			DynamicPressure:     dequantizeUnsigned(dc.PDynamic, pressureLimit),
			PressureGradient:    grid.Vec2{X: float64(dc.GradX), Y: float64(dc.GradY)},
		}
	}
	return width, height, cells, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
