package constants

// mruput response codes
// these consist of 4 digit numbers
//
// the 1st 3 identify the scenario
// 4th indicates if the client should show a dialog. 0 means it should not. 1 means it should.

var ATTENDANCE_ACCEPTED uint = 2110         // show the success screen
var ATTENDANCE_REJECTED uint = 2121         // show the rejection reason and offer a retry
var ATTENDANCE_NOT_RECORDED uint = 2131     // decision reached but the record failed. ask the user to retry later
var ATTEMPT_CANCELED uint = 2140            // attempt replaced or canceled, nothing to show
var ENROLLMENT_MISSING uint = 3111          // take the user to face enrollment
var NO_FACE_IN_IMAGE uint = 3121            // ask the user to retake the photo
var FACE_SERVICE_UNAVAILABLE uint = 3131    // face engine is down
var MOCK_LOCATION_DETECTED uint = 4111      // tell the user to turn off mock location apps
var OFFICE_NOT_FOUND uint = 4120            // office list is stale, refresh it
var INVALID_EMBEDDING_DIMENSION uint = 3140 // stored descriptor cannot be compared
