package tcpserver

import (
	"bufio"

	"github.com/suxuehui/jt808-deprecated/internal/protocol/jt808"
)

// frameReader 从字节流中切出完整的 7E...7E 帧。读超时返回后
// 半帧状态保留，下次调用继续累积。
type frameReader struct {
	r       *bufio.Reader
	buf     []byte
	inFrame bool
}

func newFrameReader(r *bufio.Reader) *frameReader {
	return &frameReader{r: r}
}

// next 返回下一条完整帧（含前后定界符）。帧外的杂散字节丢弃；
// 连续两个定界符视为上一帧帧尾与下一帧帧头相邻。
func (fr *frameReader) next() ([]byte, error) {
	for {
		b, err := fr.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if !fr.inFrame {
			if b == jt808.FrameSign {
				fr.inFrame = true
				fr.buf = append(fr.buf[:0], b)
			}
			continue
		}
		fr.buf = append(fr.buf, b)
		if b != jt808.FrameSign {
			continue
		}
		if len(fr.buf) == 2 {
			// 空帧体：视为新帧的起始定界符
			fr.buf = fr.buf[:1]
			continue
		}
		frame := make([]byte, len(fr.buf))
		copy(frame, fr.buf)
		fr.inFrame = false
		fr.buf = fr.buf[:0]
		return frame, nil
	}
}
