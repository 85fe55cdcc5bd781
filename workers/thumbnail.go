package workers

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"texturelab/config"
	"texturelab/media"
	"texturelab/repository"
)

// ThumbnailJob asks a worker to produce a thumbnail for one stored texture.
type ThumbnailJob struct {
	ImageID       uint
	ImageFullPath string
}

// ThumbnailGenerator runs a small worker pool producing thumbnails of
// generated textures in the background, so the generation response never
// waits on image resizing.
type ThumbnailGenerator struct {
	JobQueue  chan ThumbnailJob
	Config    config.Config
	ImageRepo repository.ImageRepositoryInterface
	Wg        sync.WaitGroup
	StopChan  chan struct{}
	Pending   map[uint]bool
	Mutex     sync.Mutex
}

// NewThumbnailGenerator starts numWorkers workers over a buffered queue.
func NewThumbnailGenerator(cfg config.Config, imageRepo repository.ImageRepositoryInterface, queueSize, numWorkers int) *ThumbnailGenerator {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	gen := &ThumbnailGenerator{
		JobQueue:  make(chan ThumbnailJob, queueSize),
		Config:    cfg,
		ImageRepo: imageRepo,
		StopChan:  make(chan struct{}),
		Pending:   make(map[uint]bool),
	}

	gen.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go gen.worker(i)
	}
	log.Printf("started %d thumbnail worker(s) with queue size %d", numWorkers, queueSize)

	return gen
}

func (tg *ThumbnailGenerator) worker(id int) {
	defer tg.Wg.Done()
	log.Printf("thumbnail worker %d started", id)
	for {
		select {
		case job, ok := <-tg.JobQueue:
			if !ok {
				log.Printf("thumbnail worker %d stopping: job queue closed", id)
				return
			}
			log.Printf("worker %d processing thumbnail for image %d", id, job.ImageID)
			tg.processJob(job)
			tg.Mutex.Lock()
			delete(tg.Pending, job.ImageID)
			tg.Mutex.Unlock()

		case <-tg.StopChan:
			log.Printf("thumbnail worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (tg *ThumbnailGenerator) processJob(job ThumbnailJob) {
	if _, err := os.Stat(job.ImageFullPath); os.IsNotExist(err) {
		log.Printf("texture file %s not found, skipping thumbnail generation", job.ImageFullPath)
		return
	} else if err != nil {
		log.Printf("error stating texture file %s before thumbnail generation: %v", job.ImageFullPath, err)
	}

	thumbSavePath, err := media.GenerateThumbnail(job.ImageFullPath, tg.Config.ThumbnailsPath, tg.Config.ThumbnailMaxSize)
	if err != nil {
		log.Printf("ERROR generating thumbnail for image %d (%s): %v", job.ImageID, job.ImageFullPath, err)
		return
	}

	relPath, err := filepath.Rel(tg.Config.MediaStoragePath, thumbSavePath)
	if err != nil {
		log.Printf("ERROR calculating relative thumbnail path for image %d: %v", job.ImageID, err)
		return
	}

	if err := tg.ImageRepo.SetThumbnail(job.ImageID, filepath.ToSlash(relPath)); err != nil {
		log.Printf("ERROR updating thumbnail DB record for image %d after generation: %v", job.ImageID, err)
		return
	}

	log.Printf("successfully generated thumbnail and updated DB for image %d", job.ImageID)
}

// QueueJob enqueues a thumbnail job unless one is already pending for the
// same image. Returns false when skipped or when the queue is full.
func (tg *ThumbnailGenerator) QueueJob(job ThumbnailJob) bool {
	tg.Mutex.Lock()
	if tg.Pending[job.ImageID] {
		tg.Mutex.Unlock()
		log.Printf("thumbnail generation for image %d already pending, skipping queue", job.ImageID)
		return false
	}

	tg.Pending[job.ImageID] = true
	tg.Mutex.Unlock()

	select {
	case tg.JobQueue <- job:
		log.Printf("queued thumbnail generation for image %d", job.ImageID)
		return true
	default:
		log.Printf("WARNING: thumbnail job queue full, failed to queue job for image %d", job.ImageID)
		tg.Mutex.Lock()
		delete(tg.Pending, job.ImageID)
		tg.Mutex.Unlock()
		return false
	}
}

// Stop signals all workers and waits for them to finish.
func (tg *ThumbnailGenerator) Stop() {
	log.Println("stopping thumbnail generator...")
	close(tg.StopChan)
	tg.Wg.Wait()
	log.Println("all thumbnail workers stopped")
}
