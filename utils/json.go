package utils

import (
	jsoniter "github.com/json-iterator/go"

	"kiji-testing/types"
)

func UnMarshal(jsonBytes []byte, path ...interface{}) (interface{}, error) {
	result := jsoniter.Get(jsonBytes, path...)
	return result.GetInterface(), result.LastError()
}

func Marshal(obj interface{}) ([]byte, error) {
	b, err := jsoniter.MarshalIndent(obj, "", "  ")
	if err != nil {
		return nil, types.Wrap(types.ErrMarshalFailed, err)
	}

	return b, nil
}
