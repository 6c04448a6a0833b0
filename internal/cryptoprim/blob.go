// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cryptoprim

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"
)

// ErrInvalidBlob is returned by DecryptBlob for every failure reason —
// bad length, bad padding, bad tag — callers must not branch on which
// one occurred. See spec.md §4.1 and §7 (Cryptographic error class).
var ErrInvalidBlob = errors.New("cryptoprim: invalid blob")

const blockSize = aes.BlockSize // 16

// EncryptBlob implements spec.md §4.1 encrypt_blob: a random IV, a
// SHA-256 tag over input appended before PKCS#7 padding, then
// AES-CBC under key (16/24/32 bytes selects AES-128/192/256). The
// output is iv ‖ ciphertext.
func EncryptBlob(input, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, blockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}

	tag := sha256.Sum256(input)
	plain := append(append([]byte{}, input...), tag[:]...)
	padded := pkcs7Pad(plain, blockSize)

	ciphertext := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(block, iv)
	cbc.CryptBlocks(ciphertext, padded)

	out := make([]byte, 0, len(iv)+len(ciphertext))
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptBlob implements spec.md §4.1 decrypt_blob. The length gate is
// len(input) % aes.BlockSize == 0 — the AES block size, independent of
// key length, per the open question resolved in spec.md §9 (a
// len(input) % len(key) gate incorrectly rejects legitimate
// ciphertexts for 24/32-byte keys).
func DecryptBlob(input, key []byte) ([]byte, error) {
	if len(input)%blockSize != 0 || len(input) < 2*blockSize {
		return nil, ErrInvalidBlob
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrInvalidBlob
	}

	iv, ciphertext := input[:blockSize], input[blockSize:]
	padded := make([]byte, len(ciphertext))
	cbc := cipher.NewCBCDecrypter(block, iv)
	cbc.CryptBlocks(padded, ciphertext)

	plain, ok := pkcs7Unpad(padded, blockSize)
	if !ok || len(plain) < sha256.Size {
		return nil, ErrInvalidBlob
	}

	data, tag := plain[:len(plain)-sha256.Size], plain[len(plain)-sha256.Size:]
	want := sha256.Sum256(data)
	if subtle.ConstantTimeCompare(tag, want[:]) != 1 {
		return nil, ErrInvalidBlob
	}
	return data, nil
}

func pkcs7Pad(data []byte, size int) []byte {
	pad := size - len(data)%size
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(data []byte, size int) ([]byte, bool) {
	if len(data) == 0 || len(data)%size != 0 {
		return nil, false
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > size || pad > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, false
		}
	}
	return data[:len(data)-pad], true
}
