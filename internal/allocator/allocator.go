// Package allocator cấp phát id số ổn định cho các logical entity.
//
// Mỗi loại entity có một Sequence riêng (seeded từ max id đã có trong output
// hoặc một floor cố định) và một Registry key→id: cùng một logical key luôn
// nhận lại đúng một id, trong một lần chạy cũng như giữa các lần chạy khi
// registry được seed lại từ output cũ.
package allocator

import "sync"

// Sequence phát id tăng dần: floor+1, floor+2, ...
type Sequence struct {
	mu      sync.Mutex
	current int64
}

// NewSequence trả về sequence bắt đầu sau floor.
func NewSequence(floor int64) *Sequence {
	return &Sequence{current: floor}
}

// Next id kế tiếp.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current++
	return s.current
}

// Bump đẩy floor lên ít nhất n (dùng khi đọc thêm output thấy id lớn hơn).
func (s *Sequence) Bump(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.current {
		s.current = n
	}
}

// Registry ánh xạ logical key → id. GetOrCreate là read-check-then-write nên
// cần mutex khi dùng đồng thời.
type Registry struct {
	mu  sync.Mutex
	seq *Sequence
	ids map[string]int64
}

// NewRegistry registry rỗng cấp id từ seq.
func NewRegistry(seq *Sequence) *Registry {
	return &Registry{
		seq: seq,
		ids: make(map[string]int64),
	}
}

// Seed ghi nhận một cặp key→id đã tồn tại trong output cũ và đẩy sequence
// qua id đó. Key đã seed thì GetOrCreate trả lại đúng id cũ, không mint mới.
func (r *Registry) Seed(key string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[key] = id
	r.seq.Bump(id)
}

// GetOrCreate trả id của key; lần đầu gặp key thì mint id mới từ sequence.
// Id không bao giờ được dùng lại cho hai key khác nhau.
func (r *Registry) GetOrCreate(key string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[key]; ok {
		return id
	}
	id := r.seq.Next()
	r.ids[key] = id
	return id
}

// Has cho biết key đã được cấp id chưa (không mint).
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.ids[key]
	return ok
}

// Len số key đã đăng ký.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}
