package databind

import "errors"

// Error taxonomy of the binding runtime. Registration errors are fatal
// at setup time and surface as invalid handles; resolution errors are
// recoverable and surface as empty variables; conversion errors leave
// the target unmodified.
var (
	// ErrAlreadyBound reports a duplicate root binding name.
	ErrAlreadyBound = errors.New("name already bound")
	// ErrAlreadyRegistered reports a duplicate type registration.
	ErrAlreadyRegistered = errors.New("type already registered")
	// ErrNotRegistered reports a type with no registered definition.
	ErrNotRegistered = errors.New("type not registered")
	// ErrMemberNotFound reports a struct member lookup miss.
	ErrMemberNotFound = errors.New("member not found")
	// ErrIndexOutOfBounds reports an array index outside [0, length).
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	// ErrLeafHasNoChildren reports navigation below a scalar.
	ErrLeafHasNoChildren = errors.New("scalar variable has no children")
	// ErrValueNotScalar reports Get/Set on an array or struct.
	ErrValueNotScalar = errors.New("variable is not a scalar")
	// ErrNotAnArray reports a length query on a non-array.
	ErrNotAnArray = errors.New("variable is not an array")
	// ErrConversion reports a type-incompatible scalar assignment.
	ErrConversion = errors.New("value type is not convertible")
	// ErrUnresolved reports an operation on the zero Variable.
	ErrUnresolved = errors.New("variable is unresolved")
)

var (
	errorMalformedAddress = errors.New("malformed address")
	errorUnknownRoot      = errors.New("unknown root name")
)
