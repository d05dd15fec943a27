package retroarch

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		reply   string
		want    Status
		wantErr bool
	}{
		{"GET_STATUS PLAYING snes,Super Mario World,crc32=b19ed489\n",
			Status{State: "PLAYING", Core: "snes", Game: "Super Mario World", CRC32: "b19ed489"}, false},
		{"GET_STATUS PAUSED genesis,Sonic, the Hedgehog,crc32=f9394e97",
			Status{State: "PAUSED", Core: "genesis", Game: "Sonic, the Hedgehog", CRC32: "f9394e97"}, false},
		{"GET_STATUS PLAYING nes,Tetris",
			Status{State: "PLAYING", Core: "nes", Game: "Tetris"}, false},
		{"GET_STATUS CONTENTLESS", Status{State: "CONTENTLESS"}, false},
		{"VERSION 1.19.1", Status{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, err := ParseStatus(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, Status{State: "PAUSED"}.Playing())
	assert.False(t, Status{State: "CONTENTLESS"}.Playing())
}

// fakeRetroArch answers GET_STATUS and records everything it receives.
func fakeRetroArch(t *testing.T, reply string) (addr string, received <-chan string) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch := make(chan string, 8)
	go func() {
		buf := make([]byte, 1024)
		for {
			n, from, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			msg := string(buf[:n])
			ch <- msg
			if msg == "GET_STATUS" && reply != "" {
				_, _ = conn.WriteTo([]byte(reply), from)
			}
		}
	}()
	return conn.LocalAddr().String(), ch
}

func TestClient_Send(t *testing.T) {
	addr, received := fakeRetroArch(t, "")
	c := NewClient(addr, nil)
	assert.Equal(t, addr, c.Addr())
	require.True(t, c.Send("SAVE_STATE"))

	select {
	case msg := <-received:
		assert.Equal(t, "SAVE_STATE", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("command not received")
	}
}

func TestClient_Status(t *testing.T) {
	addr, _ := fakeRetroArch(t, "GET_STATUS PLAYING snes,Chrono Trigger,crc32=2d206bf7\n")
	c := NewClient(addr, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Chrono Trigger", st.Game)
	assert.Equal(t, "snes", st.Core)
}

func TestClient_StatusNoReply(t *testing.T) {
	addr, _ := fakeRetroArch(t, "")
	c := NewClient(addr, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := c.Status(ctx)
	assert.ErrorIs(t, err, ErrNoReply)
}
