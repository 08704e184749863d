package jsonb

import (
	"database/sql"
	"encoding/json"
)

// EncodeList сериализует срез для JSONB колонки, nil превращается в пустой массив
// Значение передается строкой: lib/pq отправляет []byte как bytea
func EncodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EncodeNullable сериализует необязательный объект, nil превращается в NULL
func EncodeNullable[T any](value *T) (sql.NullString, error) {
	if value == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// DecodeList разбирает JSONB массив, пустая колонка дает пустой срез
func DecodeList[T any](data []byte, dest *[]T) error {
	if len(data) == 0 {
		*dest = []T{}
		return nil
	}
	return json.Unmarshal(data, dest)
}

// DecodeNullable разбирает необязательный JSONB объект, NULL дает nil
func DecodeNullable[T any](data []byte) (*T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		return nil, err
	}
	return value, nil
}
