package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRefToken(t *testing.T) {
	// Test case 1: Standard ref
	token := EncodeRefToken(42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeRefToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, int64(42), decoded, "Ref should match after decode")

	// Test case 2: Large ref
	largeToken := EncodeRefToken(9_223_372_036_854_775_807)
	decodedLarge, err := DecodeRefToken(largeToken)
	assert.NoError(t, err, "Decoding large ref should not return an error")
	assert.Equal(t, int64(9_223_372_036_854_775_807), decodedLarge, "Large ref should match after decode")

	// Test case 3: Zero ref
	zeroToken := EncodeRefToken(0)
	decodedZero, err := DecodeRefToken(zeroToken)
	assert.NoError(t, err, "Decoding zero ref should not return an error")
	assert.Equal(t, int64(0), decodedZero, "Zero ref should match after decode")
}

func TestDecodeRefTokenError(t *testing.T) {
	// Test invalid base64
	_, err := DecodeRefToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test non-numeric content
	_, err = DecodeRefToken("bm90YW51bWJlcg==") // Base64 encoded "notanumber"
	assert.Error(t, err, "Should return an error for non-numeric content")
	assert.Contains(t, err.Error(), "ref parse", "Error should mention ref parsing issue")
}

func TestEncodeMultiFieldToken(t *testing.T) {
	// Test with simple fields
	fields := []string{"field1", "field2", "field3"}
	token := EncodeMultiFieldToken(fields...)

	decodedFields, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, fields, decodedFields, "Fields should match after decode")

	// Test with empty fields
	emptyToken := EncodeMultiFieldToken()
	decodedEmpty, err := DecodeMultiFieldToken(emptyToken)
	assert.NoError(t, err, "Decoding should not return an error")
	// When splitting an empty string with strings.Split, we get a slice with one empty string
	assert.Equal(t, []string{""}, decodedEmpty, "Should decode to slice with one empty string")

	// Test fields with ref/order cursors as used by the account ledger view
	cursorToken := EncodeMultiFieldToken("17", "3")
	decodedCursor, err := DecodeMultiFieldToken(cursorToken)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, []string{"17", "3"}, decodedCursor, "Cursor fields should match after decode")
}
