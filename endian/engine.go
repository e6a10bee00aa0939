// Package endian provides byte order engines for binary decoding.
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder into a unified Engine interface that also
// knows whether it matches the host byte order. The native check is what
// enables zero-copy reinterpretation of wire bytes: a decoder may only alias
// memory directly when the data's byte order and the host's agree.
//
// # Basic Usage
//
// perf_event data is written in the byte order of the machine that produced
// it, so most users want the host engine:
//
//	import "github.com/arloliu/pevent/endian"
//
//	engine := endian.Native()
//	cfg := pevent.NewConfig().WithEndian(engine)
//
// For traces captured on a foreign-endian machine, pick the order explicitly
// with Little() or Big().
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned Engine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// Engine combines ByteOrder and AppendByteOrder from encoding/binary with a
// host-order predicate.
//
// The ByteOrder and AppendByteOrder methods are backed by binary.LittleEndian
// or binary.BigEndian from the standard library, so an Engine behaves exactly
// like the corresponding standard byte order.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder

	// IsNative reports whether this engine's byte order matches the host's.
	IsNative() bool
}

type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type engine struct {
	byteOrder
	native bool
}

func (e engine) IsNative() bool { return e.native }

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	// Create a byte slice pointing to the memory address of 'i'.
	// We only need the first byte.
	b := (*[2]byte)(unsafe.Pointer(&i))

	// Check the first byte at the lowest memory address
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.ByteOrder(binary.LittleEndian)
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.ByteOrder(binary.BigEndian)
}

// Little returns the little-endian engine.
func Little() Engine {
	return engine{binary.LittleEndian, IsNativeLittleEndian()}
}

// Big returns the big-endian engine.
func Big() Engine {
	return engine{binary.BigEndian, IsNativeBigEndian()}
}

// Native returns the engine matching the host byte order.
func Native() Engine {
	if IsNativeBigEndian() {
		return Big()
	}

	return Little()
}

// FromByteOrder returns the engine for a standard library byte order.
// binary.BigEndian maps to Big(), anything else to Little().
func FromByteOrder(order binary.ByteOrder) Engine {
	if order == binary.ByteOrder(binary.BigEndian) {
		return Big()
	}

	return Little()
}
