package roomba

import "sync/atomic"

// Sensor streaming: once started with the stream command, the robot
// pushes a checksummed frame with the requested packets every 15ms
// until paused.
//
// Frame layout: [19][n-bytes][id data ... id data][checksum], where the
// checksum makes the whole frame sum to zero mod 256.

const streamFrameHeader = 19

// Stream asks the robot to stream the given packets and calls fn for
// every decoded frame. Streaming stops, and the robot is told to pause,
// when fn returns false, when PauseStream is called from another
// goroutine, or when a frame fails to decode. A framing failure means
// the byte stream is no longer trustworthy and is returned as a fatal
// error; the engine does not try to resynchronize.
//
// The engine lock is held per frame, not for the whole run, so
// PauseStream stays deliverable while frames flow.
func (r *Roomba) Stream(ids []SensorID, fn func(Snapshot) bool) error {
	args := make([]int, 0, len(ids)+1)
	args = append(args, len(ids))
	for _, id := range ids {
		if _, err := PayloadSize([]SensorID{id}); err != nil {
			return err
		}
		args = append(args, int(id))
	}
	r.Lock()
	atomic.StoreInt32(&r.streamPaused, 0)
	err := r.exec("stream", args...)
	r.Unlock()
	if err != nil {
		return err
	}
	for {
		r.Lock()
		snap, err := r.readStreamFrame()
		r.Unlock()
		if atomic.LoadInt32(&r.streamPaused) != 0 {
			// paused from another goroutine; a read error at this point
			// is just the stream going quiet
			return nil
		}
		if err != nil {
			r.PauseStream()
			return err
		}
		if !fn(snap) {
			return r.PauseStream()
		}
	}
}

// PauseStream tells the robot to stop sending frames without clearing
// the requested packet list. It may be called while Stream runs in
// another goroutine; the running Stream then returns nil.
func (r *Roomba) PauseStream() error {
	atomic.StoreInt32(&r.streamPaused, 1)
	r.Lock()
	defer r.Unlock()
	return r.exec("pause_resume_stream", 0)
}

// ResumeStream restarts a paused stream with the previously requested
// packet list.
func (r *Roomba) ResumeStream() error {
	atomic.StoreInt32(&r.streamPaused, 0)
	r.Lock()
	defer r.Unlock()
	return r.exec("pause_resume_stream", 1)
}

func (r *Roomba) readStreamFrame() (Snapshot, error) {
	hdr, err := r.Conn.Read(2)
	if err != nil {
		return nil, &ChannelError{Op: "read", Err: err}
	}
	if hdr[0] != streamFrameHeader {
		return nil, ErrStreamHeader
	}
	n := int(hdr[1])
	body, err := r.Conn.Read(n)
	if err != nil {
		return nil, &ChannelError{Op: "read", Err: err}
	}
	ck, err := r.Conn.Read(1)
	if err != nil {
		return nil, &ChannelError{Op: "read", Err: err}
	}
	sum := int(hdr[0]) + int(hdr[1]) + int(ck[0])
	for _, b := range body {
		sum += int(b)
	}
	if sum&0xFF != 0 {
		return nil, ErrStreamChecksum
	}
	return decodeStreamBody(body)
}

// decodeStreamBody parses the [id data ...] body of one frame. Unlike
// plain sensor answers, frames carry the packet ids inline; a group id
// is followed by its members' concatenated payloads, like a group
// answer.
func decodeStreamBody(body []byte) (Snapshot, error) {
	var snap Snapshot
	pos := 0
	for pos < len(body) {
		id := SensorID(body[pos])
		pos++
		size, err := PayloadSize([]SensorID{id})
		if err != nil {
			return nil, err
		}
		if pos+size > len(body) {
			return nil, &BufferLengthError{Want: pos + size, Got: len(body)}
		}
		vals, err := Decode([]SensorID{id}, body[pos:pos+size])
		if err != nil {
			return nil, err
		}
		pos += size
		snap = append(snap, vals...)
	}
	return snap, nil
}
