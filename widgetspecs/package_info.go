// Package widgetspecs contains the bundled specs for the sample application: controller specs
// for widgets, request specs for search, and model specs for the associated records.
//
// The controller and request specs only talk to the application through a target.Target, so
// they can run against the in-process application or against any service that implements
// the same routes. The model specs exercise the application's store directly.
package widgetspecs
