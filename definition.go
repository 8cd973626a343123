package fit

import "encoding/binary"

const (
	recordHeaderDefinitionMask = 0x40
	recordHeaderDevFieldsMask  = 0x20
	recordHeaderCompressedMask = 0x80
	recordHeaderRegularMask    = recordHeaderDefinitionMask | recordHeaderCompressedMask
	localSlotMask              = 0x0F
	compressedLocalSlotMask    = 0x60
	compressedTimeMask         = 0x1F
)

// fieldDefinition is one field triple from a definition message.
type fieldDefinition struct {
	FieldID     byte
	FieldSize   byte
	BaseType    BaseType
	NumElements int
}

// devFieldDefinition is one developer-field triple. Developer
// fields are passed through as raw bytes; semantic decoding of them is a
// non-goal.
type devFieldDefinition struct {
	FieldNumber  byte
	Size         byte
	DevDataIndex byte
}

// definitionMessage is a parsed definition message, installed into the
// iterator's slot table under LocalSlot and replaced (not merged) if a
// later definition reuses the same slot.
type definitionMessage struct {
	LocalSlot     byte
	Arch          binary.ByteOrder
	GlobalMesgNum uint16
	Fields        []fieldDefinition
	DevFields     []devFieldDefinition
}

// parseDefinitionMessage reads a definition message body. s must be
// positioned just after the already-consumed record header byte.
func parseDefinitionMessage(s *byteStream, recordHeader byte) (*definitionMessage, error) {
	dm := &definitionMessage{LocalSlot: recordHeader & localSlotMask}

	reserved, err := s.ReadByte()
	if err != nil {
		return nil, err
	}
	if reserved != 0 {
		return nil, decoderErrf(s.Position(), "definition message reserved byte is %#x, want 0", reserved)
	}

	archByte, err := s.ReadByte()
	if err != nil {
		return nil, err
	}
	switch archByte {
	case 0:
		dm.Arch = binary.LittleEndian
	case 1:
		dm.Arch = binary.BigEndian
	default:
		return nil, decoderErrf(s.Position(), "unknown architecture byte %#x", archByte)
	}

	globalMesgNum, err := s.ReadU16(dm.Arch)
	if err != nil {
		return nil, err
	}
	dm.GlobalMesgNum = globalMesgNum

	numFields, err := s.ReadByte()
	if err != nil {
		return nil, err
	}

	dm.Fields = make([]fieldDefinition, 0, numFields)
	for i := 0; i < int(numFields); i++ {
		triple, err := s.ReadBytes(3)
		if err != nil {
			return nil, err
		}
		fieldID, fieldSize, baseTypeID := triple[0], triple[1], triple[2]

		bt, ok := LookupBaseType(baseTypeID)
		if !ok {
			debugf("fit: unknown base type id %#x for field %d in message %d, downgrading to uint8", baseTypeID, fieldID, dm.GlobalMesgNum)
			bt = baseTypeUint8
		} else if bt.Host != HostString && fieldSize > 0 && int(fieldSize)%bt.Size != 0 {
			debugf("fit: field %d size %d not a multiple of base type %s size %d, downgrading to uint8", fieldID, fieldSize, bt.Name, bt.Size)
			bt = baseTypeUint8
		}

		numElements := 1
		if bt.Host != HostString && bt.Size > 0 {
			numElements = int(fieldSize) / bt.Size
			if numElements == 0 {
				numElements = 1
			}
		}

		dm.Fields = append(dm.Fields, fieldDefinition{
			FieldID:     fieldID,
			FieldSize:   fieldSize,
			BaseType:    bt,
			NumElements: numElements,
		})
	}

	if recordHeader&recordHeaderDevFieldsMask != 0 {
		numDevFields, err := s.ReadByte()
		if err != nil {
			return nil, err
		}
		dm.DevFields = make([]devFieldDefinition, 0, numDevFields)
		for i := 0; i < int(numDevFields); i++ {
			triple, err := s.ReadBytes(3)
			if err != nil {
				return nil, err
			}
			dm.DevFields = append(dm.DevFields, devFieldDefinition{
				FieldNumber:  triple[0],
				Size:         triple[1],
				DevDataIndex: triple[2],
			})
		}
	}

	return dm, nil
}
