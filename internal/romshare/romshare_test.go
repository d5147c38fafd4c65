package romshare

import "testing"

func TestAcquireDedupesIdenticalImages(t *testing.T) {
	r := NewRegistry()
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 2, 3, 4}

	bufA, hashA := r.Acquire(a)
	bufB, hashB := r.Acquire(b)

	if hashA != hashB {
		t.Fatalf("identical content hashed differently")
	}
	if &bufA[0] != &bufB[0] {
		t.Fatalf("expected Acquire to return the same backing array for identical content")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 distinct image", r.Len())
	}
	if r.RefCount(hashA) != 2 {
		t.Fatalf("RefCount() = %d, want 2", r.RefCount(hashA))
	}
}

func TestAcquireDoesNotAliasCallersSlice(t *testing.T) {
	r := NewRegistry()
	data := []byte{0xAA, 0xBB}
	buf, _ := r.Acquire(data)
	data[0] = 0x00
	if buf[0] != 0xAA {
		t.Fatalf("registry buffer mutated by caller's original slice")
	}
}

func TestReleaseFreesOnLastReference(t *testing.T) {
	r := NewRegistry()
	_, h := r.Acquire([]byte{9, 9, 9})
	_, h2 := r.Acquire([]byte{9, 9, 9})
	if h != h2 {
		t.Fatalf("expected same hash for identical content")
	}

	r.Release(h)
	if r.RefCount(h) != 1 {
		t.Fatalf("RefCount() after one release = %d, want 1", r.RefCount(h))
	}

	r.Release(h)
	if r.RefCount(h) != 0 {
		t.Fatalf("RefCount() after final release = %d, want 0", r.RefCount(h))
	}
	if r.Len() != 0 {
		t.Fatalf("Len() after final release = %d, want 0", r.Len())
	}
}

func TestDistinctImagesGetDistinctHashes(t *testing.T) {
	r := NewRegistry()
	_, h1 := r.Acquire([]byte{1})
	_, h2 := r.Acquire([]byte{2})
	if h1 == h2 {
		t.Fatalf("different content hashed identically")
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}
