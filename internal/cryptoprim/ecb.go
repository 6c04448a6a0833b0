// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cryptoprim

import "crypto/aes"

// ECBEncrypt encrypts raw under key in straight AES-ECB: each
// blockSize-byte block independently, no IV, no padding. len(raw)
// must be a multiple of aes.BlockSize; it is used only for the fixed
// 16/32-byte ticket body (spec.md §4.1, §4.3) — never for variable
// length data, which is why there is no ECB mode in crypto/cipher.
func ECBEncrypt(raw, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(raw)%aes.BlockSize != 0 {
		return nil, ErrInvalidBlob
	}
	out := make([]byte, len(raw))
	for i := 0; i < len(raw); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], raw[i:i+aes.BlockSize])
	}
	return out, nil
}

// ECBDecrypt is the inverse of ECBEncrypt.
func ECBDecrypt(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrInvalidBlob
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrInvalidBlob
	}
	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += aes.BlockSize {
		block.Decrypt(out[i:i+aes.BlockSize], ciphertext[i:i+aes.BlockSize])
	}
	return out, nil
}
