package textdecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	b, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestDecode_UTF8(t *testing.T) {
	txt, err := Decode([]byte("手机 13812345678\n"))
	require.NoError(t, err)
	assert.Equal(t, UTF8, txt.Encoding)
	assert.Equal(t, "手机 13812345678\n", txt.Content)
}

func TestDecode_GBKFallback(t *testing.T) {
	raw := gbk(t, "用户手机号：13812345678")
	txt, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, GBK, txt.Encoding)
	assert.Contains(t, txt.Content, "用户手机号")
	assert.Contains(t, txt.Content, "13812345678")
}

func TestDecode_Binary(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xfe, 0x80, 0x81, 0xff})
	assert.ErrorIs(t, err, ErrNotText)
}

func TestDecodeGBK_Lossy(t *testing.T) {
	txt := DecodeGBK([]byte{'a', 0xff, 'b'})
	assert.Equal(t, GBK, txt.Encoding)
	assert.Contains(t, txt.Content, "a")
}

func TestDecodeName(t *testing.T) {
	assert.Equal(t, "dir/a.txt", DecodeName("dir/a.txt"))
	assert.Equal(t, "日志.txt", DecodeName(string(gbk(t, "日志.txt"))))
	// never fails, even on garbage
	assert.NotEmpty(t, DecodeName(string([]byte{0xff, 0xff})))
}
