package ws

import (
	"fmt"
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	RegisterType(&MessageTyping{})
	RegisterType(&MessageRead{})
	RegisterType(&MessagePing{})
	RegisterType(&MessagePong{})
}

// RegisterType makes msg's type decodable by Deserialize. Registering the
// same name twice panics.
func RegisterType(msg Message) {
	name := msg.GetType()
	if _, dup := typeRegistry[name]; dup {
		panic(fmt.Sprintf("ws: message type %q registered twice", name))
	}
	typeRegistry[name] = reflect.TypeOf(msg).Elem()
}

// GetTypeRegistry returns the type registry for testing
func GetTypeRegistry() map[string]reflect.Type {
	return typeRegistry
}
