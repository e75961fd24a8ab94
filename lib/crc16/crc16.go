// Package crc16 computes the CRC-16/MODBUS checksum used throughout the
// NDS ROM header, logo, and banner.
package crc16

import "github.com/pasztorpisti/go-crc"

// Checksum returns the CRC-16/MODBUS checksum of data: polynomial
// 0xA001 (reflected), initial value 0xFFFF, no final XOR, reflected
// input and output.
func Checksum(data []byte) uint16 {
	return crc.CRC16MODBUS.Calc(data)
}
