package grpc

import (
	"fmt"

	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// Every response written by the plugin starts with one of these frame bytes,
// followed by either the response message or a google.rpc.Status.
const (
	frameResponse byte = 0
	frameStatus   byte = 1
)

func protoMarshalAppend(data []byte, v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return data, fmt.Errorf("proto: error marshalling data: expected proto.Message, got %T", v)
	}
	data, err := proto.MarshalOptions{}.MarshalAppend(data, msg)
	if err != nil {
		return data, fmt.Errorf("proto: error marshalling data: %w", err)
	}
	return data, nil
}

func protoUnmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("proto: error unmarshalling data: expected proto.Message, got %T", v)
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("proto: error unmarshalling data: %w", err)
	}
	return nil
}

// encodeResponse frames a successful response.
func encodeResponse(resp any) ([]byte, error) {
	return protoMarshalAppend([]byte{frameResponse}, resp)
}

// encodeStatus frames an error status.
func encodeStatus(st *status.Status) ([]byte, error) {
	return protoMarshalAppend([]byte{frameStatus}, st.Proto())
}

// decodeResponse reads a framed response into resp. If the frame carries a
// status, the status is returned as an error and resp is left untouched.
func decodeResponse(data []byte, resp proto.Message) error {
	if len(data) == 0 {
		return fmt.Errorf("proto: empty response frame")
	}

	switch data[0] {
	case frameResponse:
		return protoUnmarshal(data[1:], resp)
	case frameStatus:
		var st spb.Status
		if err := protoUnmarshal(data[1:], &st); err != nil {
			return err
		}
		return status.ErrorProto(&st)
	default:
		return fmt.Errorf("proto: unknown response frame %d", data[0])
	}
}
