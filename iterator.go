package fit

import "io"

// messageIterator walks the message stream of one file body, maintaining
// the 16-entry local-slot table that binds local message types to the
// definition most recently seen for that slot. Installing a definition in
// slot i never disturbs any other slot j — each Next call either replaces
// exactly slots[dm.LocalSlot] or reads a data message against whatever is
// already bound there.
type messageIterator struct {
	s      *byteStream
	slots  [16]*definitionMessage
	endPos int
}

func newMessageIterator(s *byteStream, header Header) *messageIterator {
	return &messageIterator{
		s:      s,
		endPos: int(header.Size) + int(header.DataSize) + 1,
	}
}

// Done reports whether the stream has reached the recorded end of the
// message body (header size plus declared data size). Position grows
// monotonically with every successful Next call, so Done eventually holds.
func (it *messageIterator) Done() bool {
	return it.s.Position() >= it.endPos
}

// Next returns the next data message, installing and consulting definition
// messages transparently as it encounters them. It returns io.EOF once
// Done() holds. Compressed-timestamp record headers are detected but not
// decoded: when tolerant is false Next returns a DecoderError wrapping
// ErrCompressedTimestampUnsupported; when tolerant is true it instead skips
// the message's payload bytes (sized from the slot's bound definition) and
// continues to the next record.
func (it *messageIterator) Next(tolerant bool) (*dataMessage, error) {
	for {
		if it.Done() {
			return nil, io.EOF
		}

		recordStart := it.s.Position()
		recordHeader, err := it.s.ReadByte()
		if err != nil {
			return nil, err
		}

		switch {
		case recordHeader&recordHeaderCompressedMask != 0:
			slot := (recordHeader & compressedLocalSlotMask) >> 5
			dm := it.slots[slot]
			if dm == nil {
				return nil, decoderErrf(it.s.Position(), "compressed timestamp message references unbound local slot %d", slot)
			}
			if !tolerant {
				return nil, wrapDecoderErr(it.s.Position(), "compressed timestamp message", ErrCompressedTimestampUnsupported)
			}
			if _, err := it.s.ReadBytes(messageByteWidth(dm)); err != nil {
				return nil, wrapDecoderErr(it.s.Position(), "skipping compressed timestamp message", err)
			}
			debugf("fit: skipped compressed timestamp message in slot %d (tolerant mode)", slot)
			continue

		case recordHeader&recordHeaderDefinitionMask != 0:
			dm, err := parseDefinitionMessage(it.s, recordHeader)
			if err != nil {
				return nil, err
			}
			if old := it.slots[dm.LocalSlot]; old != nil {
				debugf("fit: slot %d redefined: message %d -> %d", dm.LocalSlot, old.GlobalMesgNum, dm.GlobalMesgNum)
			}
			it.slots[dm.LocalSlot] = dm
			continue

		default:
			slot := recordHeader & localSlotMask
			dm := it.slots[slot]
			if dm == nil {
				return nil, decoderErrf(it.s.Position(), "data message references unbound local slot %d", slot)
			}
			msg, err := parseDataMessage(it.s, dm)
			if err != nil {
				return nil, err
			}
			msg.StartPos = recordStart
			msg.HeaderByte = recordHeader
			if raw, err := it.s.Slice(recordStart, it.s.Position()-recordStart); err == nil {
				msg.Raw = raw
			}
			return msg, nil
		}
	}
}

func messageByteWidth(dm *definitionMessage) int {
	n := 0
	for _, fd := range dm.Fields {
		n += int(fd.FieldSize)
	}
	for _, df := range dm.DevFields {
		n += int(df.Size)
	}
	return n
}
