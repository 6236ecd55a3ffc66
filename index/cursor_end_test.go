package index_test

import (
	"testing"

	"github.com/dacapoday/cursor"
	"github.com/dacapoday/cursor/internal/harness"
	"github.com/stretchr/testify/require"
)

func eachBound(t *testing.T, fn func(t *testing.T, env *harness.Env, unique, inclusive bool)) {
	for _, unique := range []bool{true, false} {
		for _, inclusive := range []bool{true, false} {
			name := kindName(unique) + "_exclusive"
			if inclusive {
				name = kindName(unique) + "_inclusive"
			}
			t.Run(name, func(t *testing.T) {
				harness.Run(t, func(t *testing.T, env *harness.Env) {
					fn(t, env, unique, inclusive)
				})
			})
		}
	}
}

func TestEndPositionNextForward(t *testing.T) {
	eachBound(t, func(t *testing.T, env *harness.Env, unique, inclusive bool) {
		ix := newIndex(t, env, unique,
			kid{key1, loc1}, kid{key2, loc1}, kid{key3, loc1}, kid{key4, loc1}, kid{key5, loc1})
		if !unique {
			insert(t, env, ix, kid{key3, loc2})
		}

		c := ix.NewCursor(env.View(), cursor.Forward)
		defer c.Close()
		c.SetEndPosition(cursor.Bound(key3, inclusive))

		require.Equal(t, at(key1, loc1), r(c.Seek(key1, true)))
		require.Equal(t, at(key2, loc1), r(c.Next()))
		if inclusive {
			require.Equal(t, at(key3, loc1), r(c.Next()))
			if !unique {
				require.Equal(t, at(key3, loc2), r(c.Next()))
			}
		}
		require.Equal(t, eof, r(c.Next()))
		require.Equal(t, eof, r(c.Next()), "stays exhausted")
	})
}

func TestEndPositionNextReverse(t *testing.T) {
	eachBound(t, func(t *testing.T, env *harness.Env, unique, inclusive bool) {
		ix := newIndex(t, env, unique,
			kid{key1, loc1}, kid{key2, loc1}, kid{key3, loc1}, kid{key4, loc1}, kid{key5, loc1})
		if !unique {
			insert(t, env, ix, kid{key3, loc2})
		}

		c := ix.NewCursor(env.View(), cursor.Reverse)
		defer c.Close()
		c.SetEndPosition(cursor.Bound(key3, inclusive))

		require.Equal(t, at(key5, loc1), r(c.Seek(key5, true)))
		require.Equal(t, at(key4, loc1), r(c.Next()))
		if inclusive {
			if !unique {
				require.Equal(t, at(key3, loc2), r(c.Next()))
			}
			require.Equal(t, at(key3, loc1), r(c.Next()))
		}
		require.Equal(t, eof, r(c.Next()))
		require.Equal(t, eof, r(c.Next()), "stays exhausted")
	})
}

func TestEndPositionSeekForward(t *testing.T) {
	eachBound(t, func(t *testing.T, env *harness.Env, unique, inclusive bool) {
		ix := newIndex(t, env, unique, kid{key1, loc1}, kid{key3, loc1}, kid{key4, loc1})

		c := ix.NewCursor(env.View(), cursor.Forward)
		defer c.Close()
		c.SetEndPosition(cursor.Bound(key3, inclusive))

		require.Equal(t, eof, r(c.Seek(key4, inclusive)), "seeking past the end")

		maybeKey3 := eof
		if inclusive {
			maybeKey3 = at(key3, loc1)
		}
		require.Equal(t, maybeKey3, r(c.Seek(key3, inclusive)))
		require.Equal(t, maybeKey3, r(c.Seek(key2, inclusive)))

		c.SaveUnpositioned()
		remove(t, env, ix, kid{key3, loc1})
		c.Restore(env.View())

		require.Equal(t, eof, r(c.Seek(key2, inclusive)))
		require.Equal(t, eof, r(c.Seek(key3, inclusive)))
	})
}

func TestEndPositionSeekReverse(t *testing.T) {
	eachBound(t, func(t *testing.T, env *harness.Env, unique, inclusive bool) {
		ix := newIndex(t, env, unique, kid{key1, loc1}, kid{key2, loc1}, kid{key4, loc1})

		c := ix.NewCursor(env.View(), cursor.Reverse)
		defer c.Close()
		c.SetEndPosition(cursor.Bound(key2, inclusive))

		require.Equal(t, eof, r(c.Seek(key1, inclusive)), "seeking past the end")

		maybeKey2 := eof
		if inclusive {
			maybeKey2 = at(key2, loc1)
		}
		require.Equal(t, maybeKey2, r(c.Seek(key2, inclusive)))
		require.Equal(t, maybeKey2, r(c.Seek(key3, true)))

		c.SaveUnpositioned()
		remove(t, env, ix, kid{key2, loc1})
		c.Restore(env.View())

		require.Equal(t, eof, r(c.Seek(key3, true)))
		require.Equal(t, eof, r(c.Seek(key2, true)))
	})
}

// TestEndPositionRestore checks that restore never lands beyond the end.
func TestEndPositionRestore(t *testing.T) {
	for _, unique := range []bool{true, false} {
		t.Run("forward_"+kindName(unique), func(t *testing.T) {
			harness.Run(t, func(t *testing.T, env *harness.Env) {
				ix := newIndex(t, env, unique, kid{key1, loc1}, kid{key2, loc1}, kid{key3, loc1}, kid{key4, loc1})

				c := ix.NewCursor(env.View(), cursor.Forward)
				defer c.Close()
				c.SetEndPosition(cursor.Bound(key3, false))

				require.Equal(t, at(key1, loc1), r(c.Seek(key1, true)))
				c.Save()
				c.Restore(env.View())
				require.Equal(t, at(key2, loc1), r(c.Next()))

				c.Save()
				remove(t, env, ix, kid{key2, loc1}, kid{key3, loc1})
				c.Restore(env.View())
				require.Equal(t, eof, r(c.Next()))
			})
		})

		t.Run("reverse_"+kindName(unique), func(t *testing.T) {
			harness.Run(t, func(t *testing.T, env *harness.Env) {
				ix := newIndex(t, env, unique, kid{key1, loc1}, kid{key2, loc1}, kid{key3, loc1}, kid{key4, loc1})

				c := ix.NewCursor(env.View(), cursor.Reverse)
				defer c.Close()
				c.SetEndPosition(cursor.Bound(key2, false))

				require.Equal(t, at(key4, loc1), r(c.Seek(key4, true)))
				c.Save()
				c.Restore(env.View())
				require.Equal(t, at(key3, loc1), r(c.Next()))

				c.Save()
				remove(t, env, ix, kid{key2, loc1}, kid{key3, loc1})
				c.Restore(env.View())
				require.Equal(t, eof, r(c.Next()))
			})
		})
	}
}

// TestEndPositionRestoreAfterUnpositioned checks that the end position is
// applied to the new view even when the cursor was saved unpositioned.
func TestEndPositionRestoreAfterUnpositioned(t *testing.T) {
	for _, unique := range []bool{true, false} {
		t.Run("forward_"+kindName(unique), func(t *testing.T) {
			harness.Run(t, func(t *testing.T, env *harness.Env) {
				ix := newIndex(t, env, unique, kid{key1, loc1}, kid{key4, loc1})

				c := ix.NewCursor(env.View(), cursor.Forward)
				defer c.Close()
				c.SetEndPosition(cursor.Bound(key2, true))
				require.Equal(t, at(key1, loc1), r(c.Seek(key1, true)))

				c.SaveUnpositioned()
				insert(t, env, ix, kid{key2, loc1}, kid{key3, loc1})
				c.Restore(env.View())

				require.Equal(t, at(key1, loc1), r(c.Seek(key1, true)))
				require.Equal(t, at(key2, loc1), r(c.Next()))
				require.Equal(t, eof, r(c.Next()))
			})
		})

		t.Run("reverse_"+kindName(unique), func(t *testing.T) {
			harness.Run(t, func(t *testing.T, env *harness.Env) {
				ix := newIndex(t, env, unique, kid{key1, loc1}, kid{key4, loc1})

				c := ix.NewCursor(env.View(), cursor.Reverse)
				defer c.Close()
				c.SetEndPosition(cursor.Bound(key3, true))
				require.Equal(t, at(key4, loc1), r(c.Seek(key4, true)))

				c.SaveUnpositioned()
				insert(t, env, ix, kid{key2, loc1}, kid{key3, loc1})
				c.Restore(env.View())

				require.Equal(t, at(key4, loc1), r(c.Seek(key4, true)))
				require.Equal(t, at(key3, loc1), r(c.Next()))
				require.Equal(t, eof, r(c.Next()))
			})
		})
	}
}

func TestEndPositionEmptyIsUnbounded(t *testing.T) {
	eachBound(t, func(t *testing.T, env *harness.Env, unique, inclusive bool) {
		ix := newIndex(t, env, unique, kid{key1, loc1}, kid{key2, loc1}, kid{key3, loc1})

		fwd := ix.NewCursor(env.View(), cursor.Forward)
		defer fwd.Close()
		fwd.SetEndPosition(cursor.EndBound{Key: []byte{}, Inclusive: inclusive})
		require.Equal(t, at(key1, loc1), r(fwd.Seek(key1, true)))
		require.Equal(t, at(key2, loc1), r(fwd.Next()))
		require.Equal(t, at(key3, loc1), r(fwd.Next()))
		require.Equal(t, eof, r(fwd.Next()))

		rev := ix.NewCursor(env.View(), cursor.Reverse)
		defer rev.Close()
		rev.SetEndPosition(cursor.EndBound{Inclusive: inclusive})
		require.Equal(t, at(key3, loc1), r(rev.Seek(key3, true)))
		require.Equal(t, at(key2, loc1), r(rev.Next()))
		require.Equal(t, at(key1, loc1), r(rev.Next()))
		require.Equal(t, eof, r(rev.Next()))
	})
}

func TestEndPositionByteLimits(t *testing.T) {
	eachBound(t, func(t *testing.T, env *harness.Env, unique, inclusive bool) {
		ix := newIndex(t, env, unique, kid{key7, loc1}, kid{key8, loc1})

		c := ix.NewCursor(env.View(), cursor.Forward)
		c.SetEndPosition(cursor.Bound(key7, inclusive))
		if inclusive {
			require.Equal(t, at(key7, loc1), r(c.Seek(key7, true)))
			require.Equal(t, eof, r(c.Next()))
		} else {
			require.Equal(t, eof, r(c.Seek(key7, true)))
		}
		c.Close()

		c = ix.NewCursor(env.View(), cursor.Forward)
		defer c.Close()
		c.SetEndPosition(cursor.Bound(key8, inclusive))
		require.Equal(t, at(key7, loc1), r(c.Seek(key7, true)))
		if inclusive {
			require.Equal(t, at(key8, loc1), r(c.Next()))
		}
		require.Equal(t, eof, r(c.Next()))
	})
}

// TestEndPositionWhilePositioned narrows the bound after the cursor has
// already returned entries.
func TestEndPositionWhilePositioned(t *testing.T) {
	harness.Run(t, func(t *testing.T, env *harness.Env) {
		ix := newIndex(t, env, false, kid{key1, loc1}, kid{key2, loc1}, kid{key3, loc1}, kid{key4, loc1})

		c := ix.NewCursor(env.View(), cursor.Forward)
		defer c.Close()
		require.Equal(t, at(key1, loc1), r(c.SeekStart()))
		require.Equal(t, at(key2, loc1), r(c.Next()))

		c.SetEndPosition(cursor.Bound(key3, true))
		require.Equal(t, at(key3, loc1), r(c.Next()))
		require.Equal(t, eof, r(c.Next()))
	})
}
