package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// Manager owns the queue and its periodic housekeeping.
type Manager struct {
	queue         *Queue
	reportTicker  *time.Ticker
	reportEvery   time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
	lastQueueSize int64
}

var (
	globalManager *Manager
	managerMu     sync.Mutex
)

// NewManager creates a manager with its own queue.
func NewManager(client *redis.Client, workers int) *Manager {
	return &Manager{
		queue:       NewQueue(client, workers),
		reportEvery: 5 * time.Minute,
	}
}

// SetManager installs the process wide manager.
func SetManager(m *Manager) {
	managerMu.Lock()
	defer managerMu.Unlock()
	globalManager = m
}

// GetManager returns the process wide manager, or nil before SetManager.
func GetManager() *Manager {
	managerMu.Lock()
	defer managerMu.Unlock()
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// fresh channel per cycle so the manager can be restarted
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.reportTicker = time.NewTicker(m.reportEvery)
	m.wg.Add(1)
	go m.reportWorker(m.stopCh, m.reportTicker)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.reportTicker != nil {
		m.reportTicker.Stop()
	}

	close(m.stopCh)
	m.stopCh = nil
	m.running = false
	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// reportWorker logs the queue depth whenever it changes.
func (m *Manager) reportWorker(stopCh <-chan struct{}, ticker *time.Ticker) {
	defer m.wg.Done()
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Report worker stopping")
			return
		case <-ticker.C:
			m.reportOnce(context.Background())
		}
	}
}

func (m *Manager) reportOnce(ctx context.Context) {
	pending, err := m.queue.GetQueueSize(ctx)
	if err != nil {
		log.Errorf("[JobQueue Manager] Queue size lookup failed: %v", err)
		return
	}
	processing, _ := m.queue.GetProcessingSize(ctx)
	if pending != m.lastQueueSize {
		log.Infof("[JobQueue Manager] %d pending, %d processing", pending, processing)
		m.lastQueueSize = pending
	}
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
