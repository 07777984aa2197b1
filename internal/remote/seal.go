// Package remote talks to the remote service that dispatched actions and
// counter reads are sent to.
//
// This file implements optional payload sealing for remote services that
// expect encrypted request bodies. Sealing is enabled by configuring both a
// key and an IV (--seal-key, --seal-iv); without them payloads are sent as
// plain protobuf.
package remote

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
)

// Sealer encrypts request payloads with AES-CBC and PKCS#7 padding under a
// fixed key and IV. The fixed IV makes sealing deterministic, which the
// remote service expects; it is not a general purpose encryption scheme.
type Sealer struct {
	block cipher.Block
	iv    []byte
}

// NewSealer builds a sealer from hex encoded key and IV. The key must be 16,
// 24 or 32 bytes and the IV one AES block.
func NewSealer(keyHex, ivHex string) (*Sealer, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("seal key is not valid hex: %w", err)
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("seal IV is not valid hex: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("invalid seal key: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("seal IV must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	return &Sealer{block: block, iv: iv}, nil
}

// Seal pads and encrypts plaintext.
func (s *Sealer) Seal(plaintext []byte) []byte {
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(s.block, s.iv).CryptBlocks(out, padded)
	return out
}

// Open decrypts and unpads a sealed payload.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) == 0 || len(sealed)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("sealed payload length %d is not a multiple of the block size", len(sealed))
	}
	out := make([]byte, len(sealed))
	cipher.NewCBCDecrypter(s.block, s.iv).CryptBlocks(out, sealed)
	return pkcs7Unpad(out, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
