package control

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/suxuehui/jt808-deprecated/internal/config"
)

func startControl(t *testing.T, h Handler) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmd.sock")
	srv := New(cfgpkg.ControlConfig{Path: path}, h, zap.NewNop())
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return path
}

func roundTrip(t *testing.T, path, line string) string {
	t.Helper()
	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return reply
}

func TestControlRoundTrip(t *testing.T) {
	var got string
	path := startControl(t, func(line string) string {
		got = line
		return "operation completed."
	})

	reply := roundTrip(t, path, "012345678901 get startup")
	assert.Equal(t, "012345678901 get startup", got)
	assert.Equal(t, "operation completed.\n", reply)
}

// 一条命令一个连接：应答后服务端关闭连接
func TestControlClosesAfterReply(t *testing.T) {
	path := startControl(t, func(string) string { return "ok" })

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("x y\n"))
	require.NoError(t, err)

	br := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = br.ReadString('\n')
	require.NoError(t, err)
	_, err = br.ReadByte()
	assert.Error(t, err) // EOF
}

func TestControlSequentialClients(t *testing.T) {
	path := startControl(t, func(line string) string { return "reply to " + line })
	for _, line := range []string{"a b", "c d", "e f"} {
		assert.Equal(t, "reply to "+line+"\n", roundTrip(t, path, line))
	}
}
