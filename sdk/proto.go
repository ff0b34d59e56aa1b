package sdk

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// The request message is described at runtime instead of being generated:
//
//	syntax = "proto3";
//	package refimpl.v1;
//	message OperandsRequest {
//	  int64 a = 1;
//	  int64 b = 2;
//	}
var operandsFile = &descriptorpb.FileDescriptorProto{
	Name:    proto.String("refimpl/v1/refimpl.proto"),
	Package: proto.String("refimpl.v1"),
	Syntax:  proto.String("proto3"),
	MessageType: []*descriptorpb.DescriptorProto{{
		Name: proto.String("OperandsRequest"),
		Field: []*descriptorpb.FieldDescriptorProto{
			int64Field("a", 1),
			int64Field("b", 2),
		},
	}},
}

var (
	operandsDescriptor protoreflect.MessageDescriptor
	operandsA          protoreflect.FieldDescriptor
	operandsB          protoreflect.FieldDescriptor
)

func init() {
	fd, err := protodesc.NewFile(operandsFile, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Errorf("failed to build refimpl descriptor: %w", err))
	}
	operandsDescriptor = fd.Messages().ByName("OperandsRequest")
	operandsA = operandsDescriptor.Fields().ByName("a")
	operandsB = operandsDescriptor.Fields().ByName("b")
}

func int64Field(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     descriptorpb.FieldDescriptorProto_TYPE_INT64.Enum(),
	}
}

// NewOperandsRequest returns a refimpl.v1.OperandsRequest message.
func NewOperandsRequest(a, b int64) *dynamicpb.Message {
	msg := dynamicpb.NewMessage(operandsDescriptor)
	msg.Set(operandsA, protoreflect.ValueOfInt64(a))
	msg.Set(operandsB, protoreflect.ValueOfInt64(b))
	return msg
}

// Operands extracts the operands from a refimpl.v1.OperandsRequest message.
func Operands(msg *dynamicpb.Message) (a, b int64) {
	return msg.Get(operandsA).Int(), msg.Get(operandsB).Int()
}
