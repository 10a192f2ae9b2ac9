package worker

import (
	"time"

	"glow_store/internal/domain/rewards/service"
	"glow_store/pkg/logger"

	"go.uber.org/zap"
)

// ReferralTask 推荐奖励发放任务
type ReferralTask struct {
	ReferrerID     string
	ReferredUserID string
	Retry          int // 重试次数
}

// WorkerPool 推荐奖励异步处理池
// 结算下单路径不等推荐奖励落库，任务进队列由 Worker 异步消化；
// 发放本身是幂等的（服务内部按流水去重），重试安全
type WorkerPool struct {
	TaskQueue  chan ReferralTask
	RetryQueue chan ReferralTask // 重试队列
	Rewards    service.RewardsService
	WorkerNum  int
	MaxRetry   int // 最大重试次数
}

func NewWorkerPool(rewards service.RewardsService, workerNum int, bufferSize int) *WorkerPool {
	return &WorkerPool{
		TaskQueue:  make(chan ReferralTask, bufferSize),
		RetryQueue: make(chan ReferralTask, bufferSize/2),
		Rewards:    rewards,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	logger.Log.Info("Referral worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *WorkerPool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.Rewards.ProcessReferralReward(task.ReferrerID, task.ReferredUserID); err != nil {
			logger.Log.Warn("Failed to process referral task",
				zap.Int("worker", id),
				zap.String("referrer_id", task.ReferrerID),
				zap.String("referred_user_id", task.ReferredUserID),
				zap.Error(err))

			// 如果未达到最大重试次数，加入重试队列
			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
				default:
					p.logFailedTask(task, err)
				}
			} else {
				p.logFailedTask(task, err)
			}
		}
	}
}

func (p *WorkerPool) retryWorker() {
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * time.Second)

		// 重新加入主队列
		select {
		case p.TaskQueue <- task:
		default:
			p.logFailedTask(task, nil)
		}
	}
}

func (p *WorkerPool) logFailedTask(task ReferralTask, err error) {
	// 发放是幂等的，漏掉的任务可以人工补发：下一次带相同参数调用即可
	logger.Log.Error("Referral task failed permanently",
		zap.String("referrer_id", task.ReferrerID),
		zap.String("referred_user_id", task.ReferredUserID),
		zap.Error(err))
}

// Enqueue 入队一个推荐奖励任务，队列满时丢弃并记录
func (p *WorkerPool) Enqueue(referrerID, referredUserID string) {
	task := ReferralTask{ReferrerID: referrerID, ReferredUserID: referredUserID}
	select {
	case p.TaskQueue <- task:
		// 任务入队成功
	default:
		p.logFailedTask(task, nil)
	}
}
