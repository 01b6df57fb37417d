package platform

import "sync"

// classRegistry records window class registrations for the whole process.
// Registering the same class twice is a no-op, so windows can be created
// and destroyed repeatedly.
var classRegistry = struct {
	mu      sync.Mutex
	classes map[string]int
}{classes: make(map[string]int)}

// registerClass runs register the first time key is seen. A failed
// registration is not recorded and will be retried by the next window.
func registerClass(key string, register func() error) error {
	classRegistry.mu.Lock()
	defer classRegistry.mu.Unlock()

	if _, ok := classRegistry.classes[key]; ok {
		classRegistry.classes[key]++
		return nil
	}
	if err := register(); err != nil {
		return err
	}
	classRegistry.classes[key] = 1
	return nil
}

// ClassUses reports how many windows have used the class registered under
// key, 0 if it was never registered.
func ClassUses(key string) int {
	classRegistry.mu.Lock()
	defer classRegistry.mu.Unlock()
	return classRegistry.classes[key]
}

// ClassKey builds the registry key for a backend, display and class name.
func ClassKey(backend, display, className string) string {
	return backend + "|" + display + "|" + className
}
