package sessionio

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/wc3aura/aura/internal/wire"
)

// DownloadPump streams a map file to clients that report an incomplete
// MAPSIZE, throttled by a bytes/sec cap and a concurrent-transfer limit
// shared by every Stream call on this pump.
type DownloadPump struct {
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	mapData []byte
}

// NewDownloadPump builds a pump over mapData, capped at bytesPerSecond
// total throughput and maxConcurrent simultaneous transfers.
func NewDownloadPump(bytesPerSecond, maxConcurrent int, mapData []byte) *DownloadPump {
	return &DownloadPump{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		mapData: mapData,
	}
}

// Stream sends mapData from fromOffset onward in MapChunkSize pieces,
// calling send for each encoded MAPPART frame and onProgress after each
// chunk, until the map is fully sent or ctx is canceled.
func (d *DownloadPump) Stream(ctx context.Context, uid byte, fromOffset uint32, send func(frame []byte), onProgress func(pct byte)) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("sessionio: acquiring download slot: %w", err)
	}
	defer d.sem.Release(1)

	total := len(d.mapData)
	offset := int(fromOffset)
	for offset < total {
		end := offset + wire.MapChunkSize
		if end > total {
			end = total
		}
		chunk := d.mapData[offset:end]
		if err := d.limiter.WaitN(ctx, len(chunk)); err != nil {
			return fmt.Errorf("sessionio: download throttle: %w", err)
		}

		frame, err := wire.EncodeFrame(wire.MsgMapPart, wire.MapPart{ToUID: uid, ChunkPos: uint32(offset), Data: chunk}.Encode())
		if err != nil {
			return err
		}
		send(frame)

		offset = end
		onProgress(byte(offset * 100 / total))
	}
	return nil
}
