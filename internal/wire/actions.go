package wire

// BuildActionBatch implements the action fragmentation rule: never exceed
// MaxActionBatchPayload bytes per frame; every full sub-batch is flushed as
// INCOMING_ACTION2, and exactly one final INCOMING_ACTION (carrying
// sendInterval, the batch tick latency used for pacing feedback) closes the
// window. Returns the frames in wire order — every INCOMING_ACTION2 before
// its paired INCOMING_ACTION.
func BuildActionBatch(actions []ActionData, sendInterval uint16) [][]byte {
	var frames [][]byte
	var pending []ActionData
	pendingSize := 0

	actionWireSize := func(a ActionData) int {
		return 1 + 2 + len(a.Data) // UID byte + u16 length + data
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		frame, _ := EncodeFrame(MsgIncomingAction2, IncomingAction2{Actions: pending}.Encode())
		frames = append(frames, frame)
		pending = nil
		pendingSize = 0
	}

	for _, a := range actions {
		sz := actionWireSize(a)
		if pendingSize+sz > MaxActionBatchPayload && len(pending) > 0 {
			flush()
		}
		pending = append(pending, a)
		pendingSize += sz
	}

	// The final sub-batch always ships as INCOMING_ACTION, not ACTION2 —
	// even if it would have triggered one more flush, since it carries the
	// interval.
	if 2+pendingSize > MaxActionBatchPayload && len(pending) > 1 {
		// The last action alone doesn't fit alongside the rest; split it
		// off into its own ACTION2 flush so the final ACTION stays small.
		last := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		flush()
		pending = []ActionData{last}
	}

	frame, _ := EncodeFrame(MsgIncomingAction, IncomingAction{Actions: pending, SendInterval: sendInterval}.Encode())
	frames = append(frames, frame)
	return frames
}
