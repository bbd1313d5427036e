package store

import (
	"sync/atomic"
	"time"

	"testlab_backend/pkg/logger"
	"testlab_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// AutoSaver 定时把 State 快照写入 Store。
// 保存不阻塞事件处理；定时器触发时若上一次保存仍在进行，
// 合并为一次（记 pending，在飞行中的保存结束后补一次），不会并发写。
type AutoSaver struct {
	store   Store
	state   *State
	saving  int32
	pending int32

	intervalCh chan time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}
}

func NewAutoSaver(st Store, state *State) *AutoSaver {
	return &AutoSaver{
		store:      st,
		state:      state,
		intervalCh: make(chan time.Duration, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

func (a *AutoSaver) Run(interval time.Duration) {
	defer close(a.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.trigger()
		case next := <-a.intervalCh:
			ticker.Reset(next)
			logger.Log.Info("AutoSaver interval updated", zap.Duration("interval", next))
		case <-a.stopCh:
			return
		}
	}
}

// SetInterval 配置热更新时调整保存周期
func (a *AutoSaver) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	select {
	case a.intervalCh <- interval:
	default:
	}
}

// Stop 停止定时器并同步执行最后一次保存
func (a *AutoSaver) Stop() {
	close(a.stopCh)
	<-a.doneCh

	// 等待在飞行中的保存结束
	for !atomic.CompareAndSwapInt32(&a.saving, 0, 1) {
		time.Sleep(10 * time.Millisecond)
	}
	a.saveOnce()
	atomic.StoreInt32(&a.saving, 0)
}

func (a *AutoSaver) trigger() {
	if !atomic.CompareAndSwapInt32(&a.saving, 0, 1) {
		// 上一次保存还没结束，合并到它完成之后
		atomic.StoreInt32(&a.pending, 1)
		return
	}

	go func() {
		a.saveOnce()
		atomic.StoreInt32(&a.saving, 0)
		if atomic.CompareAndSwapInt32(&a.pending, 1, 0) {
			a.trigger()
		}
	}()
}

func (a *AutoSaver) saveOnce() {
	err := a.store.Save(a.state.SnapshotSubmissions(), a.state.SnapshotChats())
	if err != nil {
		monitoring.SnapshotSaveCounter.WithLabelValues("error").Inc()
		logger.Log.Error("Snapshot save failed", zap.Error(err))
		return
	}
	monitoring.SnapshotSaveCounter.WithLabelValues("ok").Inc()
	logger.Log.Debug("Snapshot saved")
}
