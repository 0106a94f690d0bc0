package livy

// Ptr returns a pointer to v. It is a convenience for filling optional
// request fields:
//
//	req := livy.CreateSessionRequest{
//	    Kind:  livy.KindPyspark,
//	    Queue: livy.Ptr("analytics"),
//	}
func Ptr[T any](v T) *T {
	return &v
}
