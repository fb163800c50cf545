package table

import "fmt"

type NoPartitionTableError struct {
	devType    DevType
	blockSizes []int64
}

func (e *NoPartitionTableError) Error() string {
	return fmt.Sprintf("no GPT found on device (type %s, tried block sizes %v)", e.devType, e.blockSizes)
}

func NewNoPartitionTableError(devType DevType, blockSizes []int64) *NoPartitionTableError {
	return &NoPartitionTableError{
		devType:    devType,
		blockSizes: blockSizes,
	}
}

type PartitionNotFoundError struct {
	query string
}

func (e *PartitionNotFoundError) Error() string {
	return fmt.Sprintf("partition not found: %s", e.query)
}

func NewPartitionNotFoundError(query string) *PartitionNotFoundError {
	return &PartitionNotFoundError{
		query: query,
	}
}
