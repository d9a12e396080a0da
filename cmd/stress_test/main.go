package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rl1809/catalog-bot/internal/adapter/auth"
	"github.com/rl1809/catalog-bot/internal/adapter/storage"
	"github.com/rl1809/catalog-bot/internal/adapter/telegram"
	"github.com/rl1809/catalog-bot/internal/config"
	"github.com/rl1809/catalog-bot/internal/core/domain"
	"github.com/rl1809/catalog-bot/internal/core/service"
)

const (
	totalUsers = 200
	goodsCount = 7
	batchSize  = 2
	queueSize  = 8
)

// browse is the full path one simulated user clicks through. Seven phones
// in batches of two need three "next" presses.
var browse = []string{
	"section:phone_gadgets",
	"category:phone",
	"tier:all",
	"brand:apple",
	"next",
	"next",
	"next",
}

func main() {
	ctx := context.Background()

	db, err := storage.OpenSQL(ctx, storage.DriverSQLite, ":memory:")
	if err != nil {
		log.Fatalf("failed to open sqlite: %v", err)
	}
	defer db.Close()

	catalog := storage.NewSQLCatalog(db)
	for i := 0; i < goodsCount; i++ {
		if _, err := catalog.Insert(ctx, domain.NewGoods{
			CategoryID: "phone",
			Name:       fmt.Sprintf("Apple iPhone %d", 10+i),
			Price:      int64(500 + 100*i),
			Photo:      fmt.Sprintf("photo-%d", i),
		}); err != nil {
			log.Fatalf("failed to seed goods: %v", err)
		}
	}

	taxonomy, err := config.LoadTaxonomy("")
	if err != nil {
		log.Fatalf("failed to load taxonomy: %v", err)
	}

	messenger := telegram.NewRecordingMessenger()
	manager, err := service.NewSessionManager(service.Dependencies{
		Catalog:    catalog,
		Ledger:     storage.NewMemoryLedger(),
		Messenger:  messenger,
		Authorizer: auth.NewStaticAuthorizer(nil),
		Taxonomy:   taxonomy,
	}, service.Options{BatchSize: batchSize, QueueSize: queueSize})
	if err != nil {
		log.Fatalf("failed to create session manager: %v", err)
	}
	defer manager.Close()

	// Counters
	var successCount atomic.Int32
	var busyCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalUsers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()

			for _, data := range browse {
				err := manager.Handle(ctx, domain.Action{
					UserID: userID,
					ChatID: userID,
					Kind:   domain.ActionCallback,
					Data:   data,
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, service.ErrSessionBusy):
					busyCount.Add(1)
				default:
					failCount.Add(1)
				}
			}
		}(int64(i + 1))
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	photos := len(messenger.CallsByMethod("SendPhoto"))
	wantActions := int32(totalUsers * len(browse))
	wantPhotos := totalUsers * goodsCount

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Users:            %d\n", totalUsers)
	fmt.Printf("Actions:          %d\n", wantActions)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Busy:             %d\n", busyCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Photos sent:      %d\n", photos)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == wantActions {
		fmt.Println("PASS: every action was processed")
	} else {
		fmt.Printf("FAIL: expected %d processed actions, got %d\n", wantActions, success)
	}

	if photos == wantPhotos {
		fmt.Printf("PASS: every user saw all %d goods exactly once\n", goodsCount)
	} else {
		fmt.Printf("FAIL: expected %d photos, got %d\n", wantPhotos, photos)
	}
}
