package btree

import "fmt"

func Example() {
	var tree BTree[string]

	tree.Put("apple", "red")
	tree.Put("banana", "yellow")
	tree.Put("cherry", "red")

	val, found := tree.Get("banana")
	fmt.Printf("banana: %s (found: %v)\n", val, found)
	fmt.Printf("Len: %d\n", tree.Len())

	// Overwrite; the key count does not change
	tree.Put("banana", "green")
	val, _ = tree.Get("banana")
	fmt.Printf("banana: %s, Len: %d\n", val, tree.Len())

	tree.Reset()
	fmt.Printf("Empty after reset: %v\n", tree.Empty())

	// Output:
	// banana: yellow (found: true)
	// Len: 3
	// banana: green, Len: 3
	// Empty after reset: true
}

func ExampleBTree_Iter() {
	var tree BTree[int]
	tree.Put("b", 2)
	tree.Put("a", 1)
	tree.Put("c", 3)

	it := tree.Iter()
	for ok := it.SeekLast(); ok; ok = it.Prev() {
		fmt.Printf("%s: %d\n", it.Key(), it.Val())
	}

	// Output:
	// c: 3
	// b: 2
	// a: 1
}

func ExampleBTree_All() {
	type change struct {
		val     string
		deleted bool
	}

	var tree BTree[change]
	tree.Put("apple", change{val: "red"})
	tree.Put("banana", change{deleted: true})
	tree.Put("cherry", change{val: "red"})

	for key, c := range tree.All() {
		if c.deleted {
			fmt.Printf("%s: <deleted>\n", key)
		} else {
			fmt.Printf("%s: %s\n", key, c.val)
		}
	}

	// Output:
	// apple: red
	// banana: <deleted>
	// cherry: red
}
