package tsdb

// The math types below carry only what the format needs: a fixed number of
// float32 components, written in declaration (row-major) order.

type Vector2 struct{ X, Y float32 }

type Vector3 struct{ X, Y, Z float32 }

type Vector4 struct{ X, Y, Z, W float32 }

type Quaternion struct{ X, Y, Z, W float32 }

// Matrix2 is a row-major 2x2 matrix: M[row*2+col].
type Matrix2 [4]float32

// Matrix3 is a row-major 3x3 matrix: M[row*3+col].
type Matrix3 [9]float32

// Matrix4 is a row-major 4x4 matrix: M[row*4+col].
type Matrix4 [16]float32

func Identity2() Matrix2 { return Matrix2{1, 0, 0, 1} }

func Identity3() Matrix3 { return Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1} }

func Identity4() Matrix4 { return Matrix4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} }

func (m Matrix2) At(row, col int) float32 { return m[row*2+col] }
func (m Matrix3) At(row, col int) float32 { return m[row*3+col] }
func (m Matrix4) At(row, col int) float32 { return m[row*4+col] }
