package service

import "sync"

// keyedLocks sérialise les écritures distantes par clé (joueur, jeu) ou
// (joueur, succès) : deux réconciliations fetch-compare-write sur la même
// clé ne peuvent pas s'entrelacer.
type keyedLocks struct {
	mutex sync.Mutex
	locks map[string]*sync.Mutex
}

// newKeyedLocks crée un nouveau jeu de verrous par clé
func newKeyedLocks() *keyedLocks {
	return &keyedLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// get récupère ou crée le verrou d'une clé
func (kl *keyedLocks) get(key string) *sync.Mutex {
	kl.mutex.Lock()
	defer kl.mutex.Unlock()

	lock, exists := kl.locks[key]
	if !exists {
		lock = &sync.Mutex{}
		kl.locks[key] = lock
	}

	return lock
}
