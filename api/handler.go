// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/gorilla/rpc/v2"
)

const (
	Name = "feeminter"
	// BaseURL prefixes every API route.
	BaseURL = "/ext"
)

type Handler struct {
	Path    string
	Handler http.Handler
}

type HandlerFactory[T any] interface {
	New(t T) (Handler, error)
}

// NewJSONRPCHandler serves [service] as a gorilla/rpc service named [name].
// Method names are accepted in lower camel case ("feeminter.getMinters").
func NewJSONRPCHandler(name string, service interface{}) (http.Handler, error) {
	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	if err := server.RegisterService(service, name); err != nil {
		return nil, err
	}
	return server, nil
}
