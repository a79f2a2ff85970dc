package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.list")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeList(t, "012345678901;123456\n\n13812345678;4294967295\n")
	reg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, reg.Empty())

	term := reg.Find("012345678901")
	require.NotNil(t, term)
	// 鉴权码是十进制u32的小端字节序
	assert.Equal(t, [4]byte{0x40, 0xE2, 0x01, 0x00}, term.AuthCode)
	assert.Equal(t, [6]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0x01}, term.PhoneBCD)

	term2 := reg.Find("13812345678")
	require.NotNil(t, term2)
	assert.Equal(t, [4]byte{0xFF, 0xFF, 0xFF, 0xFF}, term2.AuthCode)
	// 11位手机号前补零到12位
	assert.Equal(t, [6]byte{0x01, 0x38, 0x12, 0x34, 0x56, 0x78}, term2.PhoneBCD)
}

func TestLoadErrors(t *testing.T) {
	t.Run("缺分隔符", func(t *testing.T) {
		_, err := Load(writeList(t, "012345678901\n"))
		assert.Error(t, err)
	})
	t.Run("坏鉴权码", func(t *testing.T) {
		_, err := Load(writeList(t, "012345678901;abc\n"))
		assert.Error(t, err)
	})
	t.Run("重复手机号", func(t *testing.T) {
		_, err := Load(writeList(t, "123;1\n123;2\n"))
		assert.Error(t, err)
	})
	t.Run("文件不存在", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func TestFindByBCD(t *testing.T) {
	reg, err := Load(writeList(t, "012345678901;123456\n"))
	require.NoError(t, err)

	term := reg.FindByBCD([6]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0x01})
	require.NotNil(t, term)
	assert.Equal(t, "012345678901", term.Phone)
	assert.Nil(t, reg.FindByBCD([6]byte{0x99, 0, 0, 0, 0, 0}))
}

func TestBindUnbind(t *testing.T) {
	reg, err := Load(writeList(t, "012345678901;123456\n"))
	require.NoError(t, err)
	term := reg.Find("012345678901")

	assert.False(t, reg.Online(term))
	connA, connB := "connA", "connB"
	reg.Bind(term, connA)
	assert.True(t, reg.Online(term))
	assert.Equal(t, connA, reg.Conn(term))

	// 旧连接的收尾不解绑新连接
	reg.Bind(term, connB)
	reg.Unbind(term, connA)
	assert.True(t, reg.Online(term))

	reg.Unbind(term, connB)
	assert.False(t, reg.Online(term))
}

func TestPendingUpgradeSlot(t *testing.T) {
	reg, err := Load(writeList(t, "012345678901;123456\n"))
	require.NoError(t, err)
	term := reg.Find("012345678901")

	assert.Nil(t, reg.TakePending(term))
	reg.SetPending(term, &PendingUpgrade{Type: 0x34, Version: "V1.0", FilePath: "fw.bin"})
	p := reg.TakePending(term)
	require.NotNil(t, p)
	assert.Equal(t, "V1.0", p.Version)
	// 槽位一次取空
	assert.Nil(t, reg.TakePending(term))
}

func TestSnapshot(t *testing.T) {
	reg, err := Load(writeList(t, "012345678901;123456\n555;9\n"))
	require.NoError(t, err)
	term := reg.Find("012345678901")
	reg.Bind(term, "conn")
	reg.SetManufacturer(term, [5]byte{'A', 'B', 'C', 'D', 'E'})

	snap := reg.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "012345678901", snap[0].Phone)
	assert.True(t, snap[0].Online)
	assert.NotEmpty(t, snap[0].ManufacturerID)
	assert.False(t, snap[1].Online)
}
