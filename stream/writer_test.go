package stream

import (
	"strconv"
	"sync"
	"testing"

	"github.com/indigo-web/framed"
	"github.com/indigo-web/framed/config"
	"github.com/indigo-web/framed/transport/dummy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		client := dummy.NewMockClient()
		w := NewWriter(client, "")
		require.NoError(t, w.WriteMessage([]byte("{}")))
		require.Equal(t, "Content-Length: 2\r\n\r\n{}", string(client.Written()))
	})

	t.Run("with content type", func(t *testing.T) {
		client := dummy.NewMockClient()
		w := NewWriter(client, framed.DefaultContentType)
		require.NoError(t, w.WriteMessage([]byte("{}")))
		require.Equal(t, frame("{}"), string(client.Written()))
	})

	t.Run("closed", func(t *testing.T) {
		client := dummy.NewMockClient()
		require.NoError(t, client.Close())
		require.Error(t, NewWriter(client, "").WriteMessage([]byte("{}")))
	})

	t.Run("concurrent", func(t *testing.T) {
		const (
			goroutines = 8
			perWorker  = 50
		)

		client := dummy.NewMockClient()
		w := NewWriter(client, framed.DefaultContentType)
		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					payload := `{"worker":` + strconv.Itoa(worker) + `,"seq":` + strconv.Itoa(j) + `}`
					assert.NoError(t, w.WriteMessage([]byte(payload)))
				}
			}(i)
		}
		wg.Wait()

		r := NewReader(dummy.NewMockClient(client.Written()), config.Default(), nil)
		payloads := readAll(t, r)
		require.Len(t, payloads, goroutines*perWorker)
		for _, payload := range payloads {
			require.Regexp(t, `^\{"worker":\d,"seq":\d+\}$`, payload)
		}
	})
}
