// Package codec encrypts Temporal payloads so checkout details (user ids,
// cart contents, transaction references) never cross the wire or land in
// workflow history in cleartext.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	commonpb "go.temporal.io/api/common/v1"
	"go.temporal.io/sdk/converter"
)

// MetadataEncodingEncrypted marks payloads produced by this codec.
const MetadataEncodingEncrypted = "binary/encrypted"

// EncryptionCodec encrypts and decrypts whole payloads with AES-GCM.
type EncryptionCodec struct {
	aead cipher.AEAD
}

// NewEncryptionCodec creates a codec from a 16, 24 or 32 byte AES key.
func NewEncryptionCodec(key []byte) (*EncryptionCodec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &EncryptionCodec{aead: aead}, nil
}

// NewEncryptionDataConverter wraps the default data converter with
// payload encryption using the given AES key.
func NewEncryptionDataConverter(key []byte) (converter.DataConverter, error) {
	c, err := NewEncryptionCodec(key)
	if err != nil {
		return nil, err
	}
	return converter.NewCodecDataConverter(converter.GetDefaultDataConverter(), c), nil
}

// Encode encrypts each payload. The nonce is prepended to the ciphertext.
func (c *EncryptionCodec) Encode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		data, err := p.Marshal()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}

		nonce := make([]byte, c.aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("failed to generate nonce: %w", err)
		}

		result[i] = &commonpb.Payload{
			Metadata: map[string][]byte{
				converter.MetadataEncoding: []byte(MetadataEncodingEncrypted),
			},
			Data: c.aead.Seal(nonce, nonce, data, nil),
		}
	}
	return result, nil
}

// Decode decrypts payloads produced by Encode. Payloads with any other
// encoding pass through untouched.
func (c *EncryptionCodec) Decode(payloads []*commonpb.Payload) ([]*commonpb.Payload, error) {
	result := make([]*commonpb.Payload, len(payloads))
	for i, p := range payloads {
		if string(p.Metadata[converter.MetadataEncoding]) != MetadataEncodingEncrypted {
			result[i] = p
			continue
		}

		nonceSize := c.aead.NonceSize()
		if len(p.Data) < nonceSize {
			return nil, fmt.Errorf("encrypted payload too short")
		}
		nonce, ciphertext := p.Data[:nonceSize], p.Data[nonceSize:]

		data, err := c.aead.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt payload: %w", err)
		}

		decoded := &commonpb.Payload{}
		if err := decoded.Unmarshal(data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		result[i] = decoded
	}
	return result, nil
}
