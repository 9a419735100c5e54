package store_test

import (
	"testing"

	"github.com/rail-console/fares/internal/store"
	"github.com/rail-console/fares/internal/store/storetest"
)

func TestMemoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMemory()
	})
}
